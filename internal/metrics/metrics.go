package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Broker counts checkout-session activity for the payment broker.
type Broker struct {
	SessionsCreated Counter
	Polls           Counter
	ProviderErrors  Counter
	Settlements     Counter
	Failures        Counter

	// PollDurationMillis accumulates wall time spent inside poll loops.
	PollDurationMillis Counter
}
