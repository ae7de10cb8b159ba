// Package transport defines the byte-stream abstraction the channel reads
// frames from and writes frames to, and a small registry of concrete
// backends (TCP, serial).
package transport

import (
	"context"
	"fmt"
	"time"
)

// Transport is a connected-or-not byte stream. Implementations are not
// required to be safe for concurrent Read and Write from multiple
// goroutines of the same kind (the channel already serializes writes with
// its own lock and has a single reader goroutine), but a concurrent Read and
// a concurrent Write must not corrupt each other.
type Transport interface {
	// Connect establishes the underlying connection, bounded by timeout.
	Connect(ctx context.Context, timeout time.Duration) error
	// Disconnect tears down the connection. Safe to call more than once.
	Disconnect() error
	// Read reads up to len(buf) bytes, blocking until at least one byte is
	// available or an error occurs; a closed connection is reported as an
	// error (for example io.EOF or net.ErrClosed).
	Read(buf []byte) (n int, err error)
	// Write writes the entirety of data or returns an error.
	Write(data []byte) error
	// Connected reports whether the transport believes itself connected.
	Connected() bool
}

// NewFunc constructs a Transport for a given address. The address format is
// backend specific (host:port for tcp, device path for serial).
type NewFunc func(address string, opts Options) (Transport, error)

// Options carries backend-specific dial parameters. Only the fields
// relevant to the selected backend are consulted.
type Options struct {
	// BaudRate is used by the serial backend only.
	BaudRate int
}

var registry = make(map[string]NewFunc)

// Register makes a backend available under name. Called from the backend
// package's init().
func Register(name string, fn NewFunc) {
	registry[name] = fn
}

// New constructs a Transport using the backend registered under name.
func New(name string, address string, opts Options) (Transport, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("transport: unknown backend %q", name)
	}
	return fn(address, opts)
}
