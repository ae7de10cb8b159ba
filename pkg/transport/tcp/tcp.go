// Package tcp implements the TCP transport backend (plain port 7094 or
// encrypted port 17094 — the port itself carries no protocol meaning here,
// the caller dials whichever port it needs; encryption is a layer above
// transport, see pkg/crypto).
package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gosatel/integra/pkg/transport"
	"golang.org/x/sys/unix"
)

// keepaliveIntervalSecs is how often TCP_KEEPINTVL probes fire once
// TCP_KEEPIDLE has elapsed with no traffic; the panel link can sit idle
// for long stretches between poll cycles so the OS default is too slow
// to notice a dead connection.
const keepaliveIntervalSecs = 15

func init() {
	transport.Register("tcp", New)
}

// Transport is a TCP-backed transport.Transport.
type Transport struct {
	address string

	mu   sync.Mutex
	conn net.Conn
}

// New constructs a TCP transport for address ("host:port").
func New(address string, _ transport.Options) (transport.Transport, error) {
	return &Transport{address: address}, nil
}

func (t *Transport) Connect(ctx context.Context, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.address)
	if err != nil {
		return err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		_ = tc.SetKeepAlive(true)
		setKeepaliveInterval(tc)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *Transport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (t *Transport) Read(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}
	return conn.Read(buf)
}

func (t *Transport) Write(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return net.ErrClosed
	}
	_, err := conn.Write(data)
	return err
}

func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// setKeepaliveInterval tunes TCP_KEEPINTVL directly through the raw fd;
// net.TCPConn exposes SetKeepAlive but not the probe interval itself.
func setKeepaliveInterval(tc *net.TCPConn) {
	raw, err := tc.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, keepaliveIntervalSecs)
	})
}
