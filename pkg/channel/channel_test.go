package channel

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosatel/integra/pkg/frame"
	"github.com/gosatel/integra/pkg/proto"
)

// pipeTransport adapts one end of a net.Pipe to transport.Transport, so
// tests can drive the channel's read/write loops against an in-memory
// byte stream instead of a real socket.
type pipeTransport struct {
	mu        sync.Mutex
	conn      net.Conn
	connected bool
}

func newPipeTransport(conn net.Conn) *pipeTransport {
	return &pipeTransport{conn: conn}
}

func (t *pipeTransport) Connect(_ context.Context, _ time.Duration) error {
	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	return nil
}

func (t *pipeTransport) Disconnect() error {
	t.mu.Lock()
	t.connected = false
	conn := t.conn
	t.mu.Unlock()
	return conn.Close()
}

func (t *pipeTransport) Read(buf []byte) (int, error) { return t.conn.Read(buf) }
func (t *pipeTransport) Write(data []byte) error {
	_, err := t.conn.Write(data)
	return err
}
func (t *pipeTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

type recordedEvent struct {
	event Event
	data  any
}

type eventSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *eventSink) record(_ *Channel, event Event, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{event, data})
}

func (s *eventSink) snapshot() []recordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

func newTestChannel(t *testing.T) (*Channel, net.Conn, *eventSink) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	sink := &eventSink{}
	ch, err := New("test", newPipeTransport(clientConn), "", time.Hour, sink.record)
	require.NoError(t, err)
	require.NoError(t, ch.Connect(context.Background(), time.Second))
	t.Cleanup(func() { ch.Disconnect() })
	return ch, serverConn, sink
}

// readServerFrame reads and parses exactly one frame-encoded body written
// by the channel under test, from the server's end of the pipe.
func readServerFrame(t *testing.T, serverConn net.Conn) (proto.Command, []byte) {
	t.Helper()
	dec := frame.NewDecoder()
	buf := make([]byte, 1)
	for {
		n, err := serverConn.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			continue
		}
		body, event := dec.Feed(buf[0])
		if event == frame.EventComplete {
			opcode, payload, ok := frame.ParseBody(body)
			require.True(t, ok)
			return proto.Command(opcode), payload
		}
	}
}

func TestPostWritesFramedRequest(t *testing.T) {
	ch, serverConn, _ := newTestChannel(t)
	defer serverConn.Close()

	done := make(chan struct{})
	var gotCmd proto.Command
	var gotPayload []byte
	go func() {
		gotCmd, gotPayload = readServerFrame(t, serverConn)
		close(done)
	}()

	err := ch.Post(Request{Command: proto.Command(0x80), Payload: []byte{0x01, 0x02}})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	assert.Equal(t, proto.Command(0x80), gotCmd)
	assert.Equal(t, []byte{0x01, 0x02}, gotPayload)
}

func TestSendReceivesCorrelatedResponse(t *testing.T) {
	ch, serverConn, _ := newTestChannel(t)
	defer serverConn.Close()

	go func() {
		cmd, _ := readServerFrame(t, serverConn)
		_, err := serverConn.Write(frame.Encode(byte(cmd), []byte{0xAA, 0xBB}))
		assert.NoError(t, err)
	}()

	resp, err := ch.Send(context.Background(), Request{Command: proto.Command(0x80)}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, proto.Command(0x80), resp.Command)
	assert.Equal(t, []byte{0xAA, 0xBB}, resp.Data)
	assert.True(t, resp.Success())
}

func TestSendTimeoutSynthesizesNoResponse(t *testing.T) {
	ch, serverConn, _ := newTestChannel(t)
	defer serverConn.Close()

	go func() {
		// Swallow the request frame; the panel never answers.
		readServerFrame(t, serverConn)
	}()

	resp, err := ch.Send(context.Background(), Request{Command: proto.Command(0x80)}, 20*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, ErrNoResponse, resp.ErrorCode)
}

func TestSendCollapsesReadResultIntoErrorCode(t *testing.T) {
	ch, serverConn, _ := newTestChannel(t)
	defer serverConn.Close()

	go func() {
		readServerFrame(t, serverConn)
		_, err := serverConn.Write(frame.Encode(byte(proto.ReadResult), []byte{0xFF}))
		assert.NoError(t, err)
	}()

	resp, err := ch.Send(context.Background(), Request{Command: proto.Command(0x80), ResultAllowed: true}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, proto.Command(0x80), resp.Command)
	assert.Equal(t, ErrCommandAccepted, resp.ErrorCode)
}

func TestUnsolicitedBroadcastDispatchesAsNotification(t *testing.T) {
	ch, serverConn, sink := newTestChannel(t)
	defer serverConn.Close()

	broadcastCmd := byte(0x00) // ReadZonesViolation, inside the broadcast range
	_, err := serverConn.Write(frame.Encode(broadcastCmd, []byte{0x01}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, e := range sink.snapshot() {
			if e.event == EventNotification {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	for _, e := range sink.snapshot() {
		if e.event == EventNotification {
			resp, ok := e.data.(*Response)
			require.True(t, ok)
			assert.Equal(t, proto.Command(broadcastCmd), resp.Command)
		}
	}
}

func TestDisconnectFiresDisconnectedWithoutReconnect(t *testing.T) {
	ch, serverConn, sink := newTestChannel(t)
	defer serverConn.Close()

	ch.Disconnect()

	require.Eventually(t, func() bool {
		for _, e := range sink.snapshot() {
			if e.event == EventDisconnected {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	for _, e := range sink.snapshot() {
		if e.event == EventDisconnected {
			assert.Equal(t, false, e.data)
		}
	}
	assert.False(t, ch.Connected())
}

func TestRemoteCloseFiresDisconnectedWithReconnect(t *testing.T) {
	ch, serverConn, sink := newTestChannel(t)

	serverConn.Close()

	require.Eventually(t, func() bool {
		for _, e := range sink.snapshot() {
			if e.event == EventDisconnected {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	for _, e := range sink.snapshot() {
		if e.event == EventDisconnected {
			assert.Equal(t, true, e.data)
		}
	}
}
