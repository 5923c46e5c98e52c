package core

import (
	"time"

	"github.com/zggff/shopbot/pkg/x_log"
)

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Config holds service configuration.
type Config struct {
	Name               string            `json:"name"`
	Version            string            `json:"version"`
	Description        string            `json:"description"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	QueueGroup         string            `json:"queue_group"`
	QueueGroupDisabled bool              `json:"queue_group_disabled"`

	Middleware   []Middleware `json:"-"` // applied to every endpoint, outermost first
	StatsHandler StatsHandler `json:"-"`
	DoneHandler  DoneHandler  `json:"-"`
	ErrorHandler ErrHandler   `json:"-"`

	OnStart func(Service)        `json:"-"`
	OnStop  func(Service)        `json:"-"`
	OnError func(Service, error) `json:"-"`
}

// Chain wraps h with mw so that mw[0] runs first.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logging logs every request with its subject and duration.
func Logging() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req Request) {
			start := time.Now()
			next.Handle(req)
			x_log.Debug().
				Str("subject", req.Subject()).
				Dur("took", time.Since(start)).
				Msg("request handled")
		})
	}
}
