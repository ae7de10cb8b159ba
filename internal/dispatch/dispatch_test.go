package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherProcessesInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []int

	d := New(8, func(_ context.Context, item any) {
		mu.Lock()
		got = append(got, item.(int))
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		d.Put(i)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	mu.Unlock()

	d.Shutdown()
}

func TestDispatcherRecoversFromPanickingHandler(t *testing.T) {
	var processed int32
	d := New(4, func(_ context.Context, item any) {
		if item.(int) == 1 {
			panic("boom")
		}
		atomic.AddInt32(&processed, 1)
	})

	d.Put(1)
	d.Put(2)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&processed) == 1 }, time.Second, 5*time.Millisecond)
	d.Shutdown()
}

func TestShutdownIsIdempotent(t *testing.T) {
	d := New(1, func(context.Context, any) {})
	d.Shutdown()
	d.Shutdown()
}
