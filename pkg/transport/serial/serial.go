// Package serial implements the RS232 transport backend.
package serial

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gosatel/integra/pkg/transport"
	tarmserial "github.com/tarm/serial"
)

func init() {
	transport.Register("serial", New)
}

// Transport is a serial-line-backed transport.Transport. The device path is
// passed as address, baud rate via transport.Options.BaudRate.
type Transport struct {
	device string
	baud   int

	mu   sync.Mutex
	port *tarmserial.Port
}

// New constructs a serial transport for the given device path.
func New(address string, opts transport.Options) (transport.Transport, error) {
	baud := opts.BaudRate
	if baud == 0 {
		baud = 19200
	}
	return &Transport{device: address, baud: baud}, nil
}

func (t *Transport) Connect(ctx context.Context, timeout time.Duration) error {
	cfg := &tarmserial.Config{
		Name:        t.device,
		Baud:        t.baud,
		ReadTimeout: timeout,
	}
	port, err := tarmserial.OpenPort(cfg)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.port = port
	t.mu.Unlock()
	return nil
}

func (t *Transport) Disconnect() error {
	t.mu.Lock()
	port := t.port
	t.port = nil
	t.mu.Unlock()
	if port == nil {
		return nil
	}
	return port.Close()
}

func (t *Transport) Read(buf []byte) (int, error) {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return 0, errors.New("serial: not connected")
	}
	return port.Read(buf)
}

func (t *Transport) Write(data []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return errors.New("serial: not connected")
	}
	_, err := port.Write(data)
	return err
}

func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}
