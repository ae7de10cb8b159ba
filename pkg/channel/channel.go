// Package channel implements the connected, framed request/response link
// to one panel endpoint (component C5): response correlation, the
// keep-alive ping task, the background read loop, and close/reconnect
// orchestration. It owns nothing about *which* transport or encryption
// key to use — those are supplied at construction — so the same Channel
// code drives a plain TCP link, an encrypted TCP link, or serial.
//
// Grounded on original_source/satel_integra_api/channel.py (IntegraChannel)
// and the teacher's bus_manager.go (subscriber list with cancel-closure
// Subscribe) / network.go (launchNodeProcess goroutine-with-select shape).
package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gosatel/integra/internal/dispatch"
	"github.com/gosatel/integra/pkg/crypto"
	"github.com/gosatel/integra/pkg/frame"
	"github.com/gosatel/integra/pkg/proto"
	"github.com/gosatel/integra/pkg/transport"
)

// Event is a channel lifecycle or traffic notification delivered through
// the EventCallback supplied at construction.
type Event int

const (
	EventConnected Event = iota
	EventDisconnected
	EventNotification
)

// EventCallback receives channel lifecycle events. data is the
// reconnect-eligibility bool for EventDisconnected, or *Response for
// EventNotification; nil for EventConnected.
type EventCallback func(ch *Channel, event Event, data any)

type responseHandler func(resp *Response, err error) bool

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// handlerEntry gives each registered response handler a stable identity so
// it can be removed by reference instead of by comparing func values
// (func values are not comparable in Go).
type handlerEntry struct {
	id uint64
	fn responseHandler
}

// Channel is a connected request/response link over one Transport.
type Channel struct {
	id        string
	transport transport.Transport
	crypto    *crypto.Handler
	keepAlive time.Duration
	onEvent   EventCallback
	stats     *Stats
	events    *dispatch.Dispatcher

	frameDecoder *frame.Decoder

	writeMu   sync.Mutex
	lastWrite time.Time

	handlersMu  sync.Mutex
	handlers    []*handlerEntry
	nextHandler uint64

	closeMu   sync.Mutex
	connected bool
	readTask  *task
	pingTask  *task
}

// New constructs a disconnected Channel. integrationKey, if non-empty,
// turns on the encryption handler for this link. keepAlive of 0 uses a
// 10s default, the same keepalive DefaultClientOpts sets.
func New(id string, tr transport.Transport, integrationKey string, keepAlive time.Duration, onEvent EventCallback) (*Channel, error) {
	h, err := crypto.NewHandler(integrationKey, crypto.DefaultIDAllocator)
	if err != nil {
		return nil, err
	}
	if keepAlive <= 0 {
		keepAlive = 10 * time.Second
	}
	ch := &Channel{
		id:           id,
		transport:    tr,
		crypto:       h,
		keepAlive:    keepAlive,
		onEvent:      onEvent,
		stats:        &Stats{},
		frameDecoder: frame.NewDecoder(),
	}
	ch.events = dispatch.New(64, func(_ context.Context, item any) {
		if ch.onEvent != nil {
			ch.onEvent(ch, EventNotification, item)
		}
	})
	return ch, nil
}

// ID returns the channel's identifying string (endpoint address), used in
// logging and in Error.ChannelID.
func (ch *Channel) ID() string { return ch.id }

// Stats returns the channel's traffic counters.
func (ch *Channel) Stats() *Stats { return ch.stats }

// Connected reports whether the underlying transport is up.
func (ch *Channel) Connected() bool {
	ch.closeMu.Lock()
	defer ch.closeMu.Unlock()
	return ch.connected
}

// Connect dials the transport and starts the read and ping tasks.
func (ch *Channel) Connect(ctx context.Context, timeout time.Duration) error {
	if ch.Connected() {
		log.WithField("channel", ch.id).Warn("connect: already connected")
		return nil
	}

	if err := ch.transport.Connect(ctx, timeout); err != nil {
		return newError(ch.id, classifyConnectError(err), err)
	}

	ch.closeMu.Lock()
	ch.connected = true
	ch.frameDecoder.Reset()
	ch.closeMu.Unlock()

	ch.readTask = ch.launch(CloseReadTask, ch.readLoop)
	ch.pingTask = ch.launch(ClosePingTask, ch.pingLoop)

	ch.stats.Restart()
	ch.fireEvent(EventConnected, nil)
	return nil
}

func classifyConnectError(err error) ErrCode {
	if err == context.DeadlineExceeded {
		return ErrCodeConnTimeout
	}
	return ErrCodeConnRefused
}

// Disconnect requests a clean close; reconnect is never signaled for it.
func (ch *Channel) Disconnect() {
	ch.close(CloseDisconnect)
}

func (ch *Channel) launch(name CloseSource, body func(ctx context.Context)) *task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		body(ctx)
	}()
	return t
}

func (ch *Channel) shutdownTask(name CloseSource, t *task, closeSource CloseSource) {
	if t == nil {
		return
	}
	if name != closeSource {
		t.cancel()
		<-t.done
	}
}

func (ch *Channel) close(source CloseSource) {
	ch.closeMu.Lock()
	if !ch.connected {
		ch.closeMu.Unlock()
		return
	}
	ch.connected = false
	ch.closeMu.Unlock()

	log.WithFields(log.Fields{"channel": ch.id, "source": source}).Debug("channel closing")

	// The transport is closed before the tasks are awaited: a read task
	// parked in a transport read only returns once the transport closes.
	_ = ch.transport.Disconnect()

	ch.shutdownTask(ClosePingTask, ch.pingTask, source)
	ch.shutdownTask(CloseReadTask, ch.readTask, source)

	log.WithFields(log.Fields{"channel": ch.id, "source": source}).Debug("channel closed")

	shouldReconnect := source != CloseDisconnect
	ch.fireEvent(EventDisconnected, shouldReconnect)
	ch.failPendingHandlers(newError(ch.id, ErrCodeRemoteClosed, nil))
}

func (ch *Channel) fireEvent(event Event, data any) {
	if ch.onEvent != nil {
		ch.onEvent(ch, event, data)
	}
}

func (ch *Channel) failPendingHandlers(err error) {
	ch.handlersMu.Lock()
	handlers := ch.handlers
	ch.handlers = nil
	ch.handlersMu.Unlock()
	for _, h := range handlers {
		h.fn(nil, err)
	}
}

// write sends data (a fully framed, CRC'd body) over the transport,
// applying the encryption handler if one is configured.
func (ch *Channel) write(data []byte) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()

	wire := data
	if ch.crypto != nil {
		wire = ch.crypto.Encode(data)
		ch.stats.AddTxEnc(len(wire))
	}
	ch.stats.AddTx(len(data))

	if err := ch.transport.Write(wire); err != nil {
		go ch.close(CloseRequest)
		return newError(ch.id, ErrCodeWriteError, err)
	}
	ch.lastWrite = time.Now()
	return nil
}

func (ch *Channel) sinceLastWrite() time.Duration {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return time.Since(ch.lastWrite)
}

// Post sends req without waiting for a reply.
func (ch *Channel) Post(req Request) error {
	if !ch.Connected() {
		return newError(ch.id, ErrCodeNotConnected, nil)
	}
	return ch.write(frame.Encode(byte(req.Command), req.Payload))
}

// Send sends req and waits up to timeout for its correlated response. A
// timeout collapses to a synthetic ErrNoResponse response rather than an
// error, matching the reference client's "silence is a kind of answer"
// behavior for commands the panel simply never acknowledges.
func (ch *Channel) Send(ctx context.Context, req Request, timeout time.Duration) (*Response, error) {
	resultCh := make(chan struct {
		resp *Response
		err  error
	}, 1)

	handler := func(resp *Response, err error) bool {
		if err != nil {
			select {
			case resultCh <- struct {
				resp *Response
				err  error
			}{nil, err}:
			default:
			}
			return false
		}
		if resp.Command == req.Command || (req.ResultAllowed && resp.Command == proto.ReadResult) {
			resp.BindRequest(&req)
			select {
			case resultCh <- struct {
				resp *Response
				err  error
			}{resp, nil}:
			default:
			}
			return true
		}
		return false
	}

	ch.handlersMu.Lock()
	ch.nextHandler++
	entry := &handlerEntry{id: ch.nextHandler, fn: handler}
	ch.handlers = append(ch.handlers, entry)
	ch.handlersMu.Unlock()
	defer ch.removeHandler(entry.id)

	if err := ch.Post(req); err != nil {
		return nil, err
	}

	var result *Response
	select {
	case r := <-resultCh:
		if r.err != nil {
			return nil, r.err
		}
		result = r.resp
	case <-time.After(timeout):
		result = noResponse(req.Command)
	case <-ctx.Done():
		return nil, newError(ch.id, ErrCodeReadError, ctx.Err())
	}

	if req.ResultAllowed && result.Command == proto.ReadResult && len(result.Data) > 0 {
		result = resultResponse(req.Command, int(result.Data[0]))
	}
	return result, nil
}

func (ch *Channel) removeHandler(id uint64) {
	ch.handlersMu.Lock()
	defer ch.handlersMu.Unlock()
	for i, h := range ch.handlers {
		if h.id == id {
			ch.handlers = append(ch.handlers[:i], ch.handlers[i+1:]...)
			return
		}
	}
}

func (ch *Channel) dispatchResponse(resp *Response) {
	ch.handlersMu.Lock()
	handlers := make([]responseHandler, len(ch.handlers))
	for i, h := range ch.handlers {
		handlers[i] = h.fn
	}
	ch.handlersMu.Unlock()

	handled := false
	for _, h := range handlers {
		if h(resp, nil) {
			handled = true
			break
		}
	}

	if !handled || resp.Broadcast() {
		ch.events.Put(resp)
	}
}

func (ch *Channel) readLoop(ctx context.Context) {
	log.WithField("channel", ch.id).Debug("read task started")
	reader := bufio.NewReader(ch.transport)

	for {
		select {
		case <-ctx.Done():
			log.WithField("channel", ch.id).Debug("read task cancelled")
			return
		default:
		}

		body, err := ch.readFrame(reader)
		if err != nil {
			if err == errResync {
				continue
			}
			log.WithFields(log.Fields{"channel": ch.id, "err": err}).Debug("read task finished")
			go ch.close(CloseReadTask)
			return
		}

		opcode, payload, ok := frame.ParseBody(body)
		if !ok {
			continue
		}
		ch.dispatchResponse(newResponse(proto.Command(opcode), payload))
	}
}

var errResync = fmt.Errorf("resync")

func (ch *Channel) readFrame(reader *bufio.Reader) ([]byte, error) {
	if ch.crypto == nil {
		return ch.readPlainFrame(reader)
	}
	return ch.readEncryptedFrame(reader)
}

func (ch *Channel) readPlainFrame(reader *bufio.Reader) ([]byte, error) {
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return nil, newError(ch.id, ErrCodeRemoteClosed, err)
		}
		ch.stats.AddRx(1)
		body, event := ch.frameDecoder.Feed(b)
		switch event {
		case frame.EventComplete:
			return body, nil
		case frame.EventResync:
			log.WithField("channel", ch.id).Warn("frame resync, discarding input")
		}
	}
}

func (ch *Channel) readEncryptedFrame(reader *bufio.Reader) ([]byte, error) {
	sizeByte, err := reader.ReadByte()
	if err != nil {
		return nil, newError(ch.id, ErrCodeRemoteClosed, err)
	}
	ch.stats.AddRxEnc(1)
	if sizeByte == 0 {
		return nil, newError(ch.id, ErrCodeRemoteClosed, nil)
	}

	pdu := make([]byte, sizeByte)
	if _, err := io.ReadFull(reader, pdu); err != nil {
		return nil, newError(ch.id, ErrCodeRemoteClosed, err)
	}
	ch.stats.AddRxEnc(len(pdu))

	decrypted, err := ch.crypto.Decode(pdu)
	if err != nil {
		return nil, newError(ch.id, ErrCodeInvalidEncryptionKey, err)
	}
	ch.stats.AddRx(len(decrypted))

	dec := frame.NewDecoder()
	for _, b := range decrypted {
		if body, event := dec.Feed(b); event == frame.EventComplete {
			return body, nil
		}
	}
	return nil, errResync
}

func (ch *Channel) pingLoop(ctx context.Context) {
	log.WithField("channel", ch.id).Debug("ping task started")
	pingPayload := proto.EncodeElementRequest(proto.ElementZone, proto.ElementRangePlain, 1)
	pingReq := Request{Command: proto.ElementReadName, Payload: pingPayload, ResultAllowed: false}

	for {
		idle := ch.sinceLastWrite()
		if idle < ch.keepAlive {
			select {
			case <-ctx.Done():
				log.WithField("channel", ch.id).Debug("ping task cancelled")
				return
			case <-time.After(ch.keepAlive - idle):
				continue
			}
		}

		if err := ch.Post(pingReq); err != nil {
			log.WithFields(log.Fields{"channel": ch.id, "err": err}).Debug("ping task finished")
			go ch.close(ClosePingTask)
			return
		}

		select {
		case <-ctx.Done():
			log.WithField("channel", ch.id).Debug("ping task cancelled")
			return
		default:
		}
	}
}
