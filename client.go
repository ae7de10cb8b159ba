package integra

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gosatel/integra/pkg/caps"
	"github.com/gosatel/integra/pkg/channel"
	"github.com/gosatel/integra/pkg/diff"
	"github.com/gosatel/integra/pkg/monitor"
	"github.com/gosatel/integra/pkg/proto"
	"github.com/gosatel/integra/pkg/transport"
	"github.com/gosatel/integra/pkg/troubles"
)

// ClientStatus is the Client's connection lifecycle state.
//
// Grounded on original_source/satel_integra_api/client.py (IntegraStatus).
type ClientStatus int

const (
	StatusDisconnected ClientStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusDisconnecting
)

func (s ClientStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// EventSink receives everything a Client observes without being asked:
// connection lifecycle transitions, bitmask state deltas, analog
// readings, and trouble-region changes. A nil method is never called; a
// nil sink turns every callback into a no-op via the client's own nil
// checks.
//
// Grounded on original_source/satel_integra_api/client.py (the
// on_status/on_notify_* callback set IntegraClient accepts).
type EventSink interface {
	// OnStatus fires on every ClientStatus transition.
	OnStatus(status ClientStatus)
	// OnStateDelta fires for a parts/zones/outputs/doors bitmask event:
	// deltas maps a 1-based object number to its new boolean state.
	OnStateDelta(source proto.NotifySource, event proto.NotifyEvent, deltas map[int]bool)
	// OnData fires for an analog or structured reading: RTC status,
	// output power, or zone temperature.
	OnData(source proto.NotifySource, event proto.NotifyEvent, payload any)
	// OnTroubles fires once per named trouble region (or system bitflag
	// word) touched by a decoded troubles response.
	OnTroubles(region string, data any)
}

const (
	reconnectBaseDelay = 5 * time.Second
	reconnectFactor     = 3
	reconnectMaxDelay   = 500 * time.Second
	encryptedPort       = "17094"
)

// Client is the programmatic surface over one panel connection: lifecycle
// (connect/disconnect/reconnect), typed reads and controls, the
// background change monitor, and event fan-out to an EventSink.
//
// Grounded on original_source/satel_integra_api/client.py (IntegraClient).
type Client struct {
	opts ClientOpts
	sink EventSink

	diffEngine  *diff.Engine
	troublesDec *troubles.Decoder
	mon         *monitor.Monitor

	mu     sync.Mutex
	status ClientStatus
	ch     *channel.Channel

	panelType   proto.PanelType
	caps        caps.Caps
	moduleMajor int
	moduleCaps  proto.ModuleCaps

	powerMonitor map[int]time.Duration
	tempMonitor  map[int]time.Duration

	suppressRefs int

	reconnectCancel context.CancelFunc
	reconnectDone   chan struct{}
}

// NewClient builds a Client for opts. Nothing is dialed until Connect is
// called. sink may be nil to run without event callbacks.
func NewClient(opts ClientOpts, sink EventSink) (*Client, error) {
	if strings.TrimSpace(opts.Address) == "" {
		return nil, ErrIllegalArgument
	}
	if opts.Backend == "" {
		opts.Backend = "tcp"
	}
	c := &Client{
		opts:        opts,
		sink:        sink,
		diffEngine:  diff.New(),
		troublesDec: troubles.NewDecoder(),
		panelType:   proto.IntegraUnknown,
		caps:        caps.ForType(proto.IntegraUnknown),
	}
	c.mon = monitor.New(c)
	return c, nil
}

// Status returns the client's current lifecycle state.
func (c *Client) Status() ClientStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Caps returns the object-count table for the last panel type this
// client observed via ReadIntegraVersion (the all-zero IntegraUnknown
// table until then).
func (c *Client) Caps() caps.Caps {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps
}

// Stats returns the current channel's traffic counters, or nil while
// disconnected.
func (c *Client) Stats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch == nil {
		return nil
	}
	return c.ch.Stats()
}

func (c *Client) setStatus(status ClientStatus) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	sink := c.sink
	c.mu.Unlock()
	if changed && sink != nil {
		sink.OnStatus(status)
	}
}

func (c *Client) tryBeginConnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status {
	case StatusConnecting, StatusReconnecting:
		return ErrConnectInProgress
	case StatusConnected:
		return ErrAlreadyConnected
	}
	c.status = StatusConnecting
	return nil
}

func (c *Client) newChannel(address string) (*channel.Channel, error) {
	tr, err := transport.New(c.opts.Backend, address, transport.Options{BaudRate: c.opts.BaudRate})
	if err != nil {
		return nil, err
	}
	return channel.New(address, tr, c.opts.IntegrationKey, c.opts.KeepAlive, c.onChannelEvent)
}

// swapPort rewrites a "host:port" address to use port, leaving anything
// that isn't host:port form (a serial device path) untouched.
func swapPort(address, port string) string {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return address
	}
	return net.JoinHostPort(host, port)
}

// dialWithRetry attempts to connect, retrying on the reconnect backoff
// schedule (5s, multiplied by 3 each failed attempt, capped at 500s)
// while retries permits: negative is unlimited, zero means this single
// attempt, positive is a budget decremented on each failure. When
// reconnecting is true and the backend is tcp, every attempt (not just
// the first) dials the encrypted port instead of the configured one,
// matching the reference client's reconnect behavior exactly.
func (c *Client) dialWithRetry(ctx context.Context, retries int, reconnecting bool) (*channel.Channel, error) {
	sleep := reconnectBaseDelay
	var lastErr error

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		addr := c.opts.Address
		if reconnecting && c.opts.Backend == "tcp" && (retries < 0 || retries > 0) {
			addr = swapPort(addr, encryptedPort)
		}

		ch, err := c.newChannel(addr)
		if err == nil {
			err = ch.Connect(ctx, c.opts.ConnTimeout)
		}
		if err == nil {
			return ch, nil
		}
		lastErr = err
		log.WithError(err).Warn("integra: connect attempt failed")

		if retries > 0 {
			retries--
		}
		if retries == 0 {
			return nil, lastErr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		if sleep < reconnectMaxDelay {
			sleep *= reconnectFactor
			if sleep > reconnectMaxDelay {
				sleep = reconnectMaxDelay
			}
		}
	}
}

// Connect dials the panel. retries selects the budget for the initial
// connect attempt on the same schedule the automatic reconnect loop
// uses: negative unlimited, zero a single try, positive a retry count.
func (c *Client) Connect(ctx context.Context, retries int) error {
	if err := c.tryBeginConnect(); err != nil {
		return err
	}
	if c.sink != nil {
		c.sink.OnStatus(StatusConnecting)
	}

	ch, err := c.dialWithRetry(ctx, retries, false)
	if err != nil {
		c.setStatus(StatusDisconnected)
		return err
	}

	c.mu.Lock()
	c.ch = ch
	c.mu.Unlock()
	c.diffEngine.Reset()
	c.troublesDec.Reset()
	c.setStatus(StatusConnected)
	c.mon.Start(context.Background())
	return nil
}

// Disconnect tears the connection down and stops any in-flight reconnect
// loop. It's a no-op if the client is already disconnected or in the
// middle of disconnecting.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.status == StatusDisconnected || c.status == StatusDisconnecting {
		c.mu.Unlock()
		return
	}
	c.status = StatusDisconnecting
	ch := c.ch
	c.mu.Unlock()
	if c.sink != nil {
		c.sink.OnStatus(StatusDisconnecting)
	}

	c.stopReconnect()
	c.mon.Stop()
	if ch != nil {
		ch.Disconnect()
	}

	c.setStatus(StatusDisconnected)
}

func (c *Client) stopReconnect() {
	c.mu.Lock()
	cancel := c.reconnectCancel
	done := c.reconnectDone
	c.reconnectCancel = nil
	c.reconnectDone = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Client) onChannelEvent(ch *channel.Channel, event channel.Event, data any) {
	switch event {
	case channel.EventConnected:
		log.WithField("channel", ch.ID()).Info("integra: channel connected")
	case channel.EventDisconnected:
		shouldReconnect, _ := data.(bool)
		c.handleDisconnected(ch, shouldReconnect)
	case channel.EventNotification:
		if resp, ok := data.(*channel.Response); ok {
			c.handleNotification(resp)
		}
	}
}

func (c *Client) handleDisconnected(ch *channel.Channel, shouldReconnect bool) {
	c.mu.Lock()
	if ch != c.ch {
		c.mu.Unlock()
		return
	}
	disconnecting := c.status == StatusDisconnecting
	c.mu.Unlock()

	if disconnecting {
		// Disconnect() already owns driving the DISCONNECTED transition.
		return
	}

	c.mon.Stop()

	if !shouldReconnect || c.opts.Reconnect == 0 {
		c.setStatus(StatusDisconnected)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.mu.Lock()
	c.reconnectCancel = cancel
	c.reconnectDone = done
	c.mu.Unlock()
	c.setStatus(StatusReconnecting)

	go c.runReconnect(ctx, done)
}

func (c *Client) runReconnect(ctx context.Context, done chan struct{}) {
	defer close(done)

	ch, err := c.dialWithRetry(ctx, c.opts.Reconnect, true)

	c.mu.Lock()
	c.reconnectCancel = nil
	c.reconnectDone = nil
	c.mu.Unlock()

	if err != nil {
		c.setStatus(StatusDisconnected)
		return
	}

	c.mu.Lock()
	c.ch = ch
	c.mu.Unlock()
	c.diffEngine.Reset()
	c.troublesDec.Reset()
	c.setStatus(StatusConnected)
	c.mon.Start(context.Background())
}

// RequestNoError returns a release function. While at least one caller
// holds the guard open, a rejected request (a non-success READ_RESULT, or
// a timeout) is logged instead of returned as a *RequestError.
//
// Grounded on original_source/satel_integra_api/base.py
// (IntegraContextRefCnt applied to _request_no_error).
func (c *Client) RequestNoError() func() {
	c.mu.Lock()
	c.suppressRefs++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.suppressRefs--
		c.mu.Unlock()
	}
}

func (c *Client) suppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressRefs > 0
}

// Send issues a raw request and returns the panel's response. Typed
// helpers build on this; most callers should prefer them.
func (c *Client) Send(ctx context.Context, cmd proto.Command, payload []byte, resultAllowed bool) (*channel.Response, error) {
	return c.send(ctx, cmd, payload, resultAllowed)
}

func (c *Client) send(ctx context.Context, cmd proto.Command, payload []byte, resultAllowed bool) (*channel.Response, error) {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil || !ch.Connected() {
		return nil, ErrNotConnected
	}

	resp, err := ch.Send(ctx, channel.Request{Command: cmd, Payload: payload, ResultAllowed: resultAllowed}, c.opts.RespTimeout)
	if err != nil {
		return nil, err
	}
	if resultAllowed && !resp.Success() {
		if c.suppressed() {
			log.WithFields(log.Fields{"command": cmd, "code": resp.ErrorCode}).Warn("integra: request rejected, suppressed")
			return resp, nil
		}
		return resp, &RequestError{Command: cmd, Code: resp.ErrorCode}
	}
	return resp, nil
}

func (c *Client) support32Bytes() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moduleCaps&proto.ModuleCap32Byte != 0 && c.panelType == proto.Integra256Plus
}

func (c *Client) supportTroubles67() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moduleMajor >= 2
}

func (c *Client) supportTroubles8() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moduleCaps&proto.ModuleCapTrouble8 != 0
}

func (c *Client) outputsBitLength() int {
	if c.support32Bytes() {
		return 256
	}
	return 128
}

func (c *Client) extraByteFor32Bytes() []byte {
	if c.support32Bytes() {
		return []byte{0xFF}
	}
	return nil
}

// cmdListLenBits is the bit length of a READ_SYSTEM_CHANGES registration
// bitmap / response bitmap: 5 bytes base, extended to 6 when the
// connected module reports troubles parts 6-7, and 7 when it also
// reports part 8.
func (c *Client) cmdListLenBits() int {
	switch {
	case c.supportTroubles67() && c.supportTroubles8():
		return 7 * 8
	case c.supportTroubles67():
		return 6 * 8
	default:
		return 5 * 8
	}
}

// systemChangesExtraBytes is the size of the payload a READ_SYSTEM_CHANGES
// poll call itself sends, independent of cmdListLenBits's response size.
func (c *Client) systemChangesExtraBytes() int {
	switch {
	case c.supportTroubles67() && c.supportTroubles8():
		return 2
	case c.supportTroubles67():
		return 1
	default:
		return 0
	}
}

func containsEvent(events []proto.NotifyEvent, target proto.NotifyEvent) bool {
	for _, e := range events {
		if e == target {
			return true
		}
	}
	return false
}

func notifySourceFor(event proto.NotifyEvent) proto.NotifySource {
	switch {
	case containsEvent(proto.PartsNotifyEvents, event):
		return proto.NotifySourceParts
	case containsEvent(proto.ZonesNotifyEvents, event):
		return proto.NotifySourceZones
	case containsEvent(proto.OutputsNotifyEvents, event):
		return proto.NotifySourceOutputs
	case containsEvent(proto.DoorsNotifyEvents, event):
		return proto.NotifySourceDoors
	case containsEvent(proto.TroublesNotifyEvents, event):
		return proto.NotifySourceTroubles
	case containsEvent(proto.TroublesMemoryNotifyEvents, event):
		return proto.NotifySourceTroublesMemory
	case containsEvent(proto.DataNotifyEvents, event):
		return proto.NotifySourceData
	default:
		return proto.NotifySourceOthers
	}
}

func (c *Client) handleNotification(resp *channel.Response) {
	event, ok := proto.EventFromCommand(resp.Command)
	if !ok {
		return
	}
	source := notifySourceFor(event)

	switch {
	case containsEvent(proto.PartsNotifyEvents, event):
		c.emitBitmaskDelta(source, event, resp.Data)
	case containsEvent(proto.ZonesNotifyEvents, event):
		c.emitBitmaskDelta(source, event, resp.Data)
	case containsEvent(proto.OutputsNotifyEvents, event):
		c.emitBitmaskDelta(source, event, resp.Data)
	case containsEvent(proto.DoorsNotifyEvents, event):
		c.emitBitmaskDelta(source, event, resp.Data)
	case containsEvent(proto.TroublesNotifyEvents, event), containsEvent(proto.TroublesMemoryNotifyEvents, event):
		c.emitTroubles(event, resp.Data)
	case event == proto.EventRtcAndStatus:
		c.emitData(source, event, proto.DecodeRtcData(resp.Data))
	case event == proto.EventOutputPower:
		c.emitData(source, event, proto.DecodeOutputPower(resp.Data))
	case event == proto.EventZoneTemperature:
		c.emitData(source, event, proto.DecodeZoneTemp(resp.Data))
	}
}

func (c *Client) emitBitmaskDelta(source proto.NotifySource, event proto.NotifyEvent, data []byte) {
	if c.sink == nil {
		return
	}
	cp := c.Caps()
	deltas := c.diffEngine.Update(event, data, diff.Capacities{
		Parts: cp.Parts, Zones: cp.Zones, Outputs: cp.Outputs, Doors: cp.Doors(),
	})
	if len(deltas) == 0 {
		return
	}
	m := make(map[int]bool, len(deltas))
	for _, d := range deltas {
		m[d.Index] = d.Value
	}
	c.sink.OnStateDelta(source, event, m)
}

func (c *Client) emitData(source proto.NotifySource, event proto.NotifyEvent, payload any) {
	if c.sink == nil {
		return
	}
	c.sink.OnData(source, event, payload)
}

func (c *Client) emitTroubles(event proto.NotifyEvent, data []byte) {
	if c.sink == nil {
		return
	}
	snap := c.troublesDec.Decode(event, data)

	byRegion := map[string]map[int]bool{}
	for _, change := range snap.Changes {
		m, ok := byRegion[change.Region]
		if !ok {
			m = map[int]bool{}
			byRegion[change.Region] = m
		}
		m[change.Index] = change.Value
	}
	for region, m := range byRegion {
		c.sink.OnTroubles(region, m)
	}
	if snap.SystemMain != 0 || snap.SystemOther != 0 {
		c.sink.OnTroubles("SYSTEM_MAIN", snap.SystemMain)
		c.sink.OnTroubles("SYSTEM_OTHER", snap.SystemOther)
	}
}

// --- typed bitmask reads ---

func (c *Client) readZones(ctx context.Context, cmd proto.Command) ([]int, error) {
	resp, err := c.send(ctx, cmd, c.extraByteFor32Bytes(), true)
	if err != nil {
		return nil, err
	}
	return proto.ZonesFromBytes(resp.Data), nil
}

func (c *Client) readParts(ctx context.Context, cmd proto.Command) ([]int, error) {
	resp, err := c.send(ctx, cmd, nil, true)
	if err != nil {
		return nil, err
	}
	return proto.PartsFromBytes(resp.Data), nil
}

func (c *Client) readOutputs(ctx context.Context, cmd proto.Command) ([]int, error) {
	resp, err := c.send(ctx, cmd, c.extraByteFor32Bytes(), true)
	if err != nil {
		return nil, err
	}
	return proto.OutputsFromBytes(resp.Data), nil
}

func (c *Client) readDoors(ctx context.Context, cmd proto.Command) ([]int, error) {
	resp, err := c.send(ctx, cmd, nil, true)
	if err != nil {
		return nil, err
	}
	return proto.DoorsFromBytes(resp.Data), nil
}

// ReadZones issues any zone-bitmask read opcode (see proto.ZonesCommands)
// and returns the set zone numbers.
func (c *Client) ReadZones(ctx context.Context, cmd proto.Command) ([]int, error) {
	return c.readZones(ctx, cmd)
}

// ReadParts issues any partition-bitmask read opcode (see
// proto.PartsCommands) and returns the set partition numbers.
func (c *Client) ReadParts(ctx context.Context, cmd proto.Command) ([]int, error) {
	return c.readParts(ctx, cmd)
}

// ReadOutputs issues any output-bitmask read opcode and returns the set
// output numbers.
func (c *Client) ReadOutputs(ctx context.Context, cmd proto.Command) ([]int, error) {
	return c.readOutputs(ctx, cmd)
}

// ReadDoors issues any door-bitmask read opcode and returns the open door
// numbers.
func (c *Client) ReadDoors(ctx context.Context, cmd proto.Command) ([]int, error) {
	return c.readDoors(ctx, cmd)
}

// ReadZonesViolation reads the currently violated zones.
func (c *Client) ReadZonesViolation(ctx context.Context) ([]int, error) {
	return c.readZones(ctx, proto.ReadZonesViolation)
}

// ReadPartsArmedReally reads the partitions armed right now (as opposed
// to exit-delay "suppressed" arming).
func (c *Client) ReadPartsArmedReally(ctx context.Context) ([]int, error) {
	return c.readParts(ctx, proto.ReadPartsArmedReally)
}

// ReadOutputsState reads the currently active outputs.
func (c *Client) ReadOutputsState(ctx context.Context) ([]int, error) {
	return c.readOutputs(ctx, proto.ReadOutputsState)
}

// ReadDoorsOpened reads the currently open doors.
func (c *Client) ReadDoorsOpened(ctx context.Context) ([]int, error) {
	return c.readDoors(ctx, proto.ReadDoorsOpened)
}

// ReadTroubles issues the read command backing a troubles notify event
// and returns the raw payload; decoding into named regions happens only
// on the spontaneous notification path, where a diff against the last
// observation is meaningful.
func (c *Client) ReadTroubles(ctx context.Context, event proto.NotifyEvent) ([]byte, error) {
	cmd, ok := proto.CommandFromEvent(event)
	if !ok {
		return nil, fmt.Errorf("integra: %v is not a troubles notify event", event)
	}
	resp, err := c.send(ctx, cmd, nil, true)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ReadIntegraVersion reads the panel's hardware/firmware identification
// and updates the client's cached capability table from it.
func (c *Client) ReadIntegraVersion(ctx context.Context) (proto.VersionData, error) {
	resp, err := c.send(ctx, proto.ReadIntegraVersion, nil, true)
	if err != nil {
		return proto.VersionData{}, err
	}
	v := proto.DecodeVersionData(resp.Data)
	c.mu.Lock()
	c.panelType = v.PanelType
	c.caps = caps.ForType(v.PanelType)
	c.mu.Unlock()
	return v, nil
}

// ReadModuleVersion reads the communication module's firmware and
// capability flags, and updates the flags this client gates wire
// encoding decisions on (support32Bytes, supportTroubles67/8).
func (c *Client) ReadModuleVersion(ctx context.Context) (proto.ModuleVersionData, error) {
	resp, err := c.send(ctx, proto.ReadModuleVersion, nil, true)
	if err != nil {
		return proto.ModuleVersionData{}, err
	}
	v := proto.DecodeModuleVersionData(resp.Data)
	c.mu.Lock()
	c.moduleMajor = v.Major
	c.moduleCaps = v.Caps
	c.mu.Unlock()
	return v, nil
}

// ReadRtcAndStatus reads the panel's clock and global status flags.
func (c *Client) ReadRtcAndStatus(ctx context.Context) (proto.RtcData, error) {
	resp, err := c.send(ctx, proto.ReadRtcAndStatus, nil, true)
	if err != nil {
		return proto.RtcData{}, err
	}
	return proto.DecodeRtcData(resp.Data), nil
}

// ReadOutputPower reads one output's current power draw.
func (c *Client) ReadOutputPower(ctx context.Context, output int) (proto.OutputPowerData, error) {
	resp, err := c.send(ctx, proto.ReadOutputPower, []byte{proto.OutputByte(output)}, true)
	if err != nil {
		return proto.OutputPowerData{}, err
	}
	return proto.DecodeOutputPower(resp.Data), nil
}

// ReadZoneTemperature reads one zone's current temperature.
func (c *Client) ReadZoneTemperature(ctx context.Context, zone int) (proto.ZoneTempData, error) {
	resp, err := c.send(ctx, proto.ReadZoneTemperature, []byte{proto.OutputByte(zone)}, true)
	if err != nil {
		return proto.ZoneTempData{}, err
	}
	return proto.DecodeZoneTemp(resp.Data), nil
}

// ReadElementName reads one addressable panel object's 16-byte ASCII
// name (and echoed address) by kind and number. rng disambiguates the
// expander/manipulator/admin shared address range; pass
// proto.ElementRangePlain for every other kind.
func (c *Client) ReadElementName(ctx context.Context, kind proto.ElementKind, rng proto.ElementRange, no int) (proto.ElementNameData, error) {
	payload := proto.EncodeElementRequest(kind, rng, no)
	resp, err := c.send(ctx, proto.ElementReadName, payload, true)
	if err != nil {
		return proto.ElementNameData{}, err
	}
	return proto.DecodeElementName(resp.Data), nil
}

// ReadEvent reads one event record by index; pass 0xFFFFFF (or a
// negative value) to start from the most recent event. source picks the
// panel's event bank (standard vs. Grade-2), which changes how the
// "no more records" sentinel is recognized.
func (c *Client) ReadEvent(ctx context.Context, index int, source proto.EventSource) (proto.EventRecord, error) {
	if index < 0 {
		index = 0xFFFFFF
	}
	resp, err := c.send(ctx, proto.ExecReadEvent, proto.EncodeEventRecordRequest(index), true)
	if err != nil {
		return proto.EventRecord{}, err
	}
	return proto.DecodeEventRecord(resp.Data, source), nil
}

// ReadEventText reads the panel's human-readable description for an
// event code (EventRecord.CodeFull()). showLong requests the extended
// (46-byte) text variant instead of the 16-byte short one.
func (c *Client) ReadEventText(ctx context.Context, eventCodeFull int, showLong bool) (proto.EventText, error) {
	resp, err := c.send(ctx, proto.ExecGetEventText, proto.EncodeEventTextRequest(eventCodeFull, showLong), true)
	if err != nil {
		return proto.EventText{}, err
	}
	return proto.DecodeEventText(resp.Data), nil
}

// --- controls ---

// Arm arms partitions in the given mode (0-3: full, suppressed, mode2,
// mode3). force bypasses violated zones instead of refusing to arm;
// withoutBypassAndDelay requests the panel skip entry-delay and allow
// arming with violated zones bypassed automatically, which only takes
// effect if the module advertises ARM_NO_BYPASS — otherwise the trailing
// byte is omitted entirely, matching the source's unconditional send
// being gated by the same capability check at the call site.
func (c *Client) Arm(ctx context.Context, mode int, parts []int, force, withoutBypassAndDelay bool, userCode string) error {
	if mode < 0 || mode > 3 {
		return ErrIllegalArgument
	}
	cmd := proto.ExecArmMode0
	if force {
		cmd = proto.ExecForceArmMode0
	}
	cmd = proto.Command(byte(cmd) + byte(mode))
	payload := proto.EncodeUserCommand(c.opts.GetUserCode(userCode), c.opts.PrefixCode, parts)
	c.mu.Lock()
	armNoBypass := c.moduleCaps&proto.ModuleCapArmNoBypass != 0
	c.mu.Unlock()
	if withoutBypassAndDelay && armNoBypass {
		payload = append(payload, 0x80)
	}
	_, err := c.send(ctx, cmd, payload, true)
	return err
}

// Disarm disarms the given partitions.
func (c *Client) Disarm(ctx context.Context, parts []int, userCode string) error {
	payload := proto.EncodeUserCommand(c.opts.GetUserCode(userCode), c.opts.PrefixCode, parts)
	_, err := c.send(ctx, proto.ExecDisarm, payload, true)
	return err
}

// ClearAlarm clears the alarm memory for the given partitions.
func (c *Client) ClearAlarm(ctx context.Context, parts []int, userCode string) error {
	payload := proto.EncodeUserCommand(c.opts.GetUserCode(userCode), c.opts.PrefixCode, parts)
	_, err := c.send(ctx, proto.ExecClearAlarm, payload, true)
	return err
}

func (c *Client) zonesCodeCommand(ctx context.Context, cmd proto.Command, zones []int, userCode string) error {
	payload := append(proto.UserCodeToBytes(c.opts.GetUserCode(userCode), c.opts.PrefixCode), proto.ZonesToBytes(zones)...)
	_, err := c.send(ctx, cmd, payload, true)
	return err
}

// ZonesBypassSet bypasses the given zones.
func (c *Client) ZonesBypassSet(ctx context.Context, zones []int, userCode string) error {
	return c.zonesCodeCommand(ctx, proto.ExecZonesBypassSet, zones, userCode)
}

// ZonesBypassUnset un-bypasses the given zones.
func (c *Client) ZonesBypassUnset(ctx context.Context, zones []int, userCode string) error {
	return c.zonesCodeCommand(ctx, proto.ExecZonesBypassUnset, zones, userCode)
}

// ZonesIsolate isolates the given zones.
func (c *Client) ZonesIsolate(ctx context.Context, zones []int, userCode string) error {
	return c.zonesCodeCommand(ctx, proto.ExecZonesIsolate, zones, userCode)
}

func (c *Client) outputsCodeCommand(ctx context.Context, cmd proto.Command, outputs []int, userCode string) error {
	payload := append(proto.UserCodeToBytes(c.opts.GetUserCode(userCode), c.opts.PrefixCode), proto.OutputsToBytes(outputs, c.outputsBitLength())...)
	_, err := c.send(ctx, cmd, payload, true)
	return err
}

// OutputsOn switches the given outputs on.
func (c *Client) OutputsOn(ctx context.Context, outputs []int, userCode string) error {
	return c.outputsCodeCommand(ctx, proto.ExecOutputsOn, outputs, userCode)
}

// OutputsOff switches the given outputs off.
func (c *Client) OutputsOff(ctx context.Context, outputs []int, userCode string) error {
	return c.outputsCodeCommand(ctx, proto.ExecOutputsOff, outputs, userCode)
}

// OutputsSwitch toggles the given outputs.
func (c *Client) OutputsSwitch(ctx context.Context, outputs []int, userCode string) error {
	return c.outputsCodeCommand(ctx, proto.ExecOutputsSwitch, outputs, userCode)
}

// OpenDoor pulses one door/output-addressed opener.
func (c *Client) OpenDoor(ctx context.Context, door int, userCode string) error {
	payload := append(proto.UserCodeToBytes(c.opts.GetUserCode(userCode), c.opts.PrefixCode), proto.OutputByte(door))
	_, err := c.send(ctx, proto.ExecOpenDoor, payload, true)
	return err
}

// ClearTroubleMemory clears the latched ("memory") trouble bits.
func (c *Client) ClearTroubleMemory(ctx context.Context, userCode string) error {
	payload := proto.UserCodeToBytes(c.opts.GetUserCode(userCode), c.opts.PrefixCode)
	_, err := c.send(ctx, proto.ExecClearTroubleMemory, payload, true)
	return err
}

// --- monitor.Requester ---

// PollSystemChanges asks the panel which monitored events changed since
// the last call.
func (c *Client) PollSystemChanges(ctx context.Context) ([]proto.NotifyEvent, error) {
	extra := c.systemChangesExtraBytes()
	var payload []byte
	if extra > 0 {
		payload = make([]byte, extra)
	}
	resp, err := c.send(ctx, proto.ReadSystemChanges, payload, true)
	if err != nil {
		return nil, err
	}
	cmds := proto.CommandsFromBytes(resp.Data)
	events := make([]proto.NotifyEvent, 0, len(cmds))
	for _, cmd := range cmds {
		if ev, ok := proto.EventFromCommand(cmd); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// PollEvent re-reads the state backing a changed event. The underlying
// send never result-checks: a rejected READ_RESULT during a background
// poll pass is not returned as an error, so one bad opcode never aborts
// the whole poll.
func (c *Client) PollEvent(ctx context.Context, event proto.NotifyEvent) error {
	cmd, ok := proto.CommandFromEvent(event)
	if !ok {
		return nil
	}
	var extra []byte
	if containsEvent(proto.ZonesNotifyEvents, event) || containsEvent(proto.OutputsNotifyEvents, event) {
		extra = c.extraByteFor32Bytes()
	}
	_, err := c.send(ctx, cmd, extra, false)
	return err
}

// PollZoneTemperature reads one zone's temperature for the monitor loop.
func (c *Client) PollZoneTemperature(ctx context.Context, zone int) error {
	_, err := c.send(ctx, proto.ReadZoneTemperature, []byte{proto.OutputByte(zone)}, false)
	return err
}

// PollOutputPower reads one output's power draw for the monitor loop.
func (c *Client) PollOutputPower(ctx context.Context, output int) error {
	_, err := c.send(ctx, proto.ReadOutputPower, []byte{proto.OutputByte(output)}, false)
	return err
}

// --- monitor schedule passthroughs ---

// PollIntervalSet sets how often the background monitor asks the panel
// for changed events. Zero disables system-change polling.
func (c *Client) PollIntervalSet(interval time.Duration) {
	c.mon.SetPollInterval(interval)
}

// PowerMonitorGet returns the configured poll interval for output, or
// zero if it isn't scheduled.
func (c *Client) PowerMonitorGet(output int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.powerMonitor[output]
}

// TempMonitorGet returns the configured poll interval for zone, or zero
// if it isn't scheduled.
func (c *Client) TempMonitorGet(zone int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempMonitor[zone]
}

// PowerMonitorSet merges outputs into the power-polling schedule: a
// positive interval adds or updates an entry, an interval of zero or
// less removes it, and a nil/empty map clears the whole schedule. It
// returns whether anything actually changed.
//
// Grounded on original_source/satel_integra_api/client.py
// (power_monitor_set).
func (c *Client) PowerMonitorSet(outputs map[int]time.Duration) bool {
	c.mu.Lock()
	changed := mergeMonitorMap(&c.powerMonitor, outputs)
	snapshot := cloneIntervalMap(c.powerMonitor)
	c.mu.Unlock()
	if changed {
		c.mon.SetOutputPower(snapshot)
	}
	return changed
}

// TempMonitorSet merges zones into the temperature-polling schedule with
// the same non-destructive merge rules as PowerMonitorSet.
//
// Grounded on original_source/satel_integra_api/client.py
// (temp_monitor_set).
func (c *Client) TempMonitorSet(zones map[int]time.Duration) bool {
	c.mu.Lock()
	changed := mergeMonitorMap(&c.tempMonitor, zones)
	snapshot := cloneIntervalMap(c.tempMonitor)
	c.mu.Unlock()
	if changed {
		c.mon.SetZoneTemperature(snapshot)
	}
	return changed
}

func mergeMonitorMap(current *map[int]time.Duration, updates map[int]time.Duration) bool {
	if len(updates) == 0 {
		if len(*current) == 0 {
			return false
		}
		*current = nil
		return true
	}

	if *current == nil {
		*current = make(map[int]time.Duration, len(updates))
	}
	changed := false
	for idx, interval := range updates {
		if interval > 0 {
			if (*current)[idx] != interval {
				(*current)[idx] = interval
				changed = true
			}
			continue
		}
		if _, ok := (*current)[idx]; ok {
			delete(*current, idx)
			changed = true
		}
	}
	return changed
}

func cloneIntervalMap(m map[int]time.Duration) map[int]time.Duration {
	if len(m) == 0 {
		return nil
	}
	out := make(map[int]time.Duration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
