package db

import (
	"context"
	"sync"
)

// Subscription is the cancellation handle returned by every Watch method.
// Cancel is safe to call more than once and from any goroutine; it stops
// further callback invocations and releases the underlying snapshot stream,
// returning once the delivery goroutine has exited.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func newSubscription(parent context.Context) (*Subscription, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{cancel: cancel, done: make(chan struct{})}, ctx
}

// Cancel stops the subscription. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed when the delivery goroutine has exited, whether through
// Cancel or a terminal stream error.
func (s *Subscription) Done() <-chan struct{} { return s.done }
