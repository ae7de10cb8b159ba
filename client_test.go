package integra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosatel/integra/pkg/channel"
	"github.com/gosatel/integra/pkg/proto"
)

func TestClientStatusString(t *testing.T) {
	cases := map[ClientStatus]string{
		StatusDisconnected:  "disconnected",
		StatusConnecting:    "connecting",
		StatusConnected:     "connected",
		StatusReconnecting:  "reconnecting",
		StatusDisconnecting: "disconnecting",
		ClientStatus(99):    "unknown",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}

func TestNewClientRejectsEmptyAddress(t *testing.T) {
	_, err := NewClient(ClientOpts{}, nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestNewClientDefaultsBackendToTCP(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "tcp", c.opts.Backend)
	assert.Equal(t, StatusDisconnected, c.Status())
}

func TestSwapPort(t *testing.T) {
	assert.Equal(t, "panel:17094", swapPort("panel:7094", encryptedPort))
	// A bare serial device path has no host:port form; left untouched.
	assert.Equal(t, "/dev/ttyUSB0", swapPort("/dev/ttyUSB0", encryptedPort))
}

func TestMergeMonitorMapEmptyClears(t *testing.T) {
	current := map[int]time.Duration{1: time.Second, 2: time.Minute}
	changed := mergeMonitorMap(&current, nil)
	assert.True(t, changed)
	assert.Empty(t, current)

	// Clearing an already-empty map reports no change.
	changed = mergeMonitorMap(&current, nil)
	assert.False(t, changed)
}

func TestMergeMonitorMapAddUpdateRemove(t *testing.T) {
	var current map[int]time.Duration

	changed := mergeMonitorMap(&current, map[int]time.Duration{1: time.Second})
	require.True(t, changed)
	assert.Equal(t, time.Second, current[1])

	// Same value again: no change.
	changed = mergeMonitorMap(&current, map[int]time.Duration{1: time.Second})
	assert.False(t, changed)

	// Different value: update.
	changed = mergeMonitorMap(&current, map[int]time.Duration{1: 2 * time.Second})
	assert.True(t, changed)
	assert.Equal(t, 2*time.Second, current[1])

	// Zero interval on an existing key: removed.
	changed = mergeMonitorMap(&current, map[int]time.Duration{1: 0})
	assert.True(t, changed)
	_, ok := current[1]
	assert.False(t, ok)

	// Zero interval on a key that was never present: no-op, no change.
	changed = mergeMonitorMap(&current, map[int]time.Duration{9: 0})
	assert.False(t, changed)
}

func TestPowerMonitorSetMergeSemantics(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	assert.True(t, c.PowerMonitorSet(map[int]time.Duration{3: 30 * time.Second}))
	assert.Equal(t, 30*time.Second, c.PowerMonitorGet(3))

	// Re-applying the same schedule changes nothing.
	assert.False(t, c.PowerMonitorSet(map[int]time.Duration{3: 30 * time.Second}))

	// Clearing with an empty map removes everything.
	assert.True(t, c.PowerMonitorSet(nil))
	assert.Equal(t, time.Duration(0), c.PowerMonitorGet(3))
}

func TestCapabilityGatesDependOnModuleAndPanelType(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	assert.False(t, c.support32Bytes())
	assert.False(t, c.supportTroubles67())
	assert.False(t, c.supportTroubles8())
	assert.Equal(t, 5*8, c.cmdListLenBits())
	assert.Equal(t, 0, c.systemChangesExtraBytes())
	assert.Equal(t, 128, c.outputsBitLength())

	c.mu.Lock()
	c.moduleMajor = 2
	c.mu.Unlock()
	assert.True(t, c.supportTroubles67())
	assert.Equal(t, 6*8, c.cmdListLenBits())
	assert.Equal(t, 1, c.systemChangesExtraBytes())

	c.mu.Lock()
	c.moduleCaps |= proto.ModuleCapTrouble8
	c.mu.Unlock()
	assert.True(t, c.supportTroubles8())
	assert.Equal(t, 7*8, c.cmdListLenBits())
	assert.Equal(t, 2, c.systemChangesExtraBytes())

	// support32Bytes additionally requires the panel type to be Integra256Plus.
	c.mu.Lock()
	c.moduleCaps |= proto.ModuleCap32Byte
	c.mu.Unlock()
	assert.False(t, c.support32Bytes())
	c.mu.Lock()
	c.panelType = proto.Integra256Plus
	c.mu.Unlock()
	assert.True(t, c.support32Bytes())
	assert.Equal(t, 256, c.outputsBitLength())
}

func TestRequestNoErrorSuppressesRejectedResponse(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	assert.False(t, c.suppressed())
	release := c.RequestNoError()
	assert.True(t, c.suppressed())

	release2 := c.RequestNoError()
	assert.True(t, c.suppressed())
	release2()
	assert.True(t, c.suppressed(), "refcount should still be held by the outer release")
	release()
	assert.False(t, c.suppressed())
}

type recordingSink struct {
	statuses []ClientStatus
	deltas   []recordedDelta
	data     []recordedData
	troubles []recordedTrouble
}

type recordedDelta struct {
	source proto.NotifySource
	event  proto.NotifyEvent
	deltas map[int]bool
}

type recordedData struct {
	source  proto.NotifySource
	event   proto.NotifyEvent
	payload any
}

type recordedTrouble struct {
	region string
	data   any
}

func (s *recordingSink) OnStatus(status ClientStatus) { s.statuses = append(s.statuses, status) }
func (s *recordingSink) OnStateDelta(source proto.NotifySource, event proto.NotifyEvent, deltas map[int]bool) {
	s.deltas = append(s.deltas, recordedDelta{source, event, deltas})
}
func (s *recordingSink) OnData(source proto.NotifySource, event proto.NotifyEvent, payload any) {
	s.data = append(s.data, recordedData{source, event, payload})
}
func (s *recordingSink) OnTroubles(region string, data any) {
	s.troubles = append(s.troubles, recordedTrouble{region, data})
}

func TestHandleNotificationEmitsFirstObservationAsAllSet(t *testing.T) {
	sink := &recordingSink{}
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, sink)
	require.NoError(t, err)

	// Integra24 has 24 zones; set bit 0 (zone 1) violated.
	c.mu.Lock()
	c.panelType = proto.Integra24
	c.caps.Zones = 24
	c.mu.Unlock()

	resp := &channel.Response{Command: proto.ReadZonesViolation, Data: []byte{0x01, 0x00, 0x00}}
	c.handleNotification(resp)

	require.Len(t, sink.deltas, 1)
	got := sink.deltas[0]
	assert.Equal(t, proto.NotifySourceZones, got.source)
	assert.Equal(t, proto.EventZonesViolation, got.event)

	// A first observation synthesizes the previous snapshot as the
	// complement of the current one, so every capacity bit reports as a
	// delta: zone 1 (the only set bit) true, the rest false.
	require.Len(t, got.deltas, 24)
	assert.True(t, got.deltas[1])
	for zone := 2; zone <= 24; zone++ {
		assert.False(t, got.deltas[zone], "zone %d", zone)
	}
}

func TestHandleNotificationDecodesAnalogReadings(t *testing.T) {
	sink := &recordingSink{}
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, sink)
	require.NoError(t, err)

	resp := &channel.Response{Command: proto.ReadZoneTemperature, Data: []byte{0x01, 0x00, 0x00}}
	c.handleNotification(resp)

	require.Len(t, sink.data, 1)
	assert.Equal(t, proto.NotifySourceData, sink.data[0].source)
	assert.Equal(t, proto.EventZoneTemperature, sink.data[0].event)
	temp, ok := sink.data[0].payload.(proto.ZoneTempData)
	require.True(t, ok)
	assert.Equal(t, 1, temp.ZoneNo)
}

func TestHandleNotificationDecodesTroublesRegions(t *testing.T) {
	sink := &recordingSink{}
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, sink)
	require.NoError(t, err)

	// TROUBLES_PART1's first region starts at offset 0; a non-zero byte
	// there should surface as a region change on the first observation.
	payload := make([]byte, 16)
	payload[0] = 0x01
	resp := &channel.Response{Command: proto.ReadTroublesPart1, Data: payload}
	c.handleNotification(resp)

	assert.NotEmpty(t, sink.troubles)
}

func TestSendFailsFastWhenNotConnected(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	_, err = c.ReadZonesViolation(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestArmRejectsOutOfRangeMode(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Arm(context.Background(), 4, nil, false, false, ""), ErrIllegalArgument)
	assert.ErrorIs(t, c.Arm(context.Background(), -1, nil, false, false, ""), ErrIllegalArgument)
}

func TestArmWithoutBypassByteOnlyAppendedWhenModuleAdvertisesCapability(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)

	// Not connected, so send fails fast either way; the point of this test
	// is that Arm itself doesn't panic or misbehave gating on moduleCaps
	// before ModuleCapArmNoBypass has ever been set.
	err = c.Arm(context.Background(), 0, []int{1}, false, true, "1111")
	assert.ErrorIs(t, err, ErrNotConnected)

	c.mu.Lock()
	c.moduleCaps |= proto.ModuleCapArmNoBypass
	c.mu.Unlock()
	err = c.Arm(context.Background(), 0, []int{1}, false, true, "1111")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDisconnectWithoutConnectIsANoOp(t *testing.T) {
	c, err := NewClient(ClientOpts{Address: "panel:7094"}, nil)
	require.NoError(t, err)
	c.Disconnect()
	assert.Equal(t, StatusDisconnected, c.Status())
}
