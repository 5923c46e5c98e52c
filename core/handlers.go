package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/zggff/shopbot/pkg/x_log"
)

// NATSError is reported when a subscription fails asynchronously.
type NATSError struct {
	Subject     string
	Description string
}

func (e *NATSError) Error() string {
	return fmt.Sprintf("%q: %s", e.Subject, e.Description)
}

type (
	ErrHandler   func(Service, *NATSError)
	DoneHandler  func(Service)
	StatsHandler func(*Endpoint) any
)

// handlers keeps the connection callbacks that were set before the service
// wrapped them.
type handlers struct {
	closed   nats.ConnHandler
	asyncErr nats.ErrHandler
}

func (s *service) wrapConnectionEventCallbacks() {
	s.m.Lock()
	defer s.m.Unlock()

	s.natsHandlers.closed = s.nc.ClosedHandler()
	s.nc.SetClosedHandler(func(c *nats.Conn) {
		x_log.Info().Str("service", s.Name).Msg("NATS connection closed")
		_ = s.Stop()
		if s.natsHandlers.closed != nil {
			s.natsHandlers.closed(c)
		}
	})

	s.natsHandlers.asyncErr = s.nc.ErrorHandler()
	s.nc.SetErrorHandler(func(c *nats.Conn, sub *nats.Subscription, err error) {
		if sub == nil {
			x_log.Error().Err(err).Msg("async NATS error")
			if s.natsHandlers.asyncErr != nil {
				s.natsHandlers.asyncErr(c, sub, err)
			}
			return
		}

		endpoint, match := s.matchSubscriptionSubject(sub.Subject)
		if !match {
			if s.natsHandlers.asyncErr != nil {
				s.natsHandlers.asyncErr(c, sub, err)
			}
			return
		}

		if s.ErrorHandler != nil {
			nerr := &NATSError{Subject: sub.Subject, Description: err.Error()}
			s.asyncDispatcher.push(func() { s.ErrorHandler(s, nerr) })
		}

		s.m.Lock()
		if endpoint != nil {
			endpoint.stats.NumErrors++
			endpoint.stats.LastError = err.Error()
		}
		s.m.Unlock()

		x_log.Error().Str("subject", sub.Subject).Err(err).Msg("NATS async error in endpoint")

		if stopErr := s.Stop(); stopErr != nil {
			if s.natsHandlers.asyncErr != nil {
				s.natsHandlers.asyncErr(c, sub, errors.Join(err, stopErr))
			}
		} else if s.natsHandlers.asyncErr != nil {
			s.natsHandlers.asyncErr(c, sub, err)
		}
	})
}

func unwrapConnectionEventCallbacks(nc *nats.Conn, h handlers) {
	if nc.IsClosed() {
		return
	}
	nc.SetClosedHandler(h.closed)
	nc.SetErrorHandler(h.asyncErr)
}

// asyncCallbacks runs user callbacks outside of NATS dispatch goroutines.
type asyncCallbacks struct {
	queue chan func()

	mu     sync.Mutex
	closed bool
}

func newAsyncCallbacks() *asyncCallbacks {
	return &asyncCallbacks{queue: make(chan func(), 100)}
}

func (ac *asyncCallbacks) run() {
	for fn := range ac.queue {
		if fn != nil {
			fn()
		}
	}
}

func (ac *asyncCallbacks) push(f func()) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.closed {
		return
	}
	ac.queue <- f
}

func (ac *asyncCallbacks) close() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.closed {
		return
	}
	close(ac.queue)
	ac.closed = true
}
