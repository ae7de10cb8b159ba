package channel

import (
	"sync"
	"time"
)

// Stats holds the monotonic rx/tx byte counters for one connection
// lifetime, reset on every successful connect.
//
// Grounded on original_source/satel_integra_api/channel.py
// (IntegraChannelStats).
type Stats struct {
	mu         sync.Mutex
	start      time.Time
	rxBytes    uint64
	rxEncBytes uint64
	txBytes    uint64
	txEncBytes uint64
}

// Snapshot is a point-in-time copy of Stats safe to read without locking.
type Snapshot struct {
	Since      time.Time
	RxBytes    uint64
	RxEncBytes uint64
	TxBytes    uint64
	TxEncBytes uint64
}

// Restart zeroes every counter and stamps the session start time. Called
// on every successful connect.
func (s *Stats) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = time.Now()
	s.rxBytes, s.rxEncBytes, s.txBytes, s.txEncBytes = 0, 0, 0, 0
}

func (s *Stats) AddRx(n int) {
	s.mu.Lock()
	s.rxBytes += uint64(n)
	s.mu.Unlock()
}

func (s *Stats) AddRxEnc(n int) {
	s.mu.Lock()
	s.rxEncBytes += uint64(n)
	s.mu.Unlock()
}

func (s *Stats) AddTx(n int) {
	s.mu.Lock()
	s.txBytes += uint64(n)
	s.mu.Unlock()
}

func (s *Stats) AddTxEnc(n int) {
	s.mu.Lock()
	s.txEncBytes += uint64(n)
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Since:      s.start,
		RxBytes:    s.rxBytes,
		RxEncBytes: s.rxEncBytes,
		TxBytes:    s.txBytes,
		TxEncBytes: s.txEncBytes,
	}
}
