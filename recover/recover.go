// Package recover turns panics in handlers and goroutines into log entries
// and errors.
package recover

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/zggff/shopbot/core"
	"github.com/zggff/shopbot/pkg/x_log"
)

const (
	tagService  = "service"
	tagFunction = "function"
	tagContext  = "context"
	tagLabel    = "label"
	tagStack    = "stack"
)

// OnPanic, when set, is called after every recovered panic.
var OnPanic func(service, function string, recovered any)

var log = x_log.New("recover")

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	log = l
}

// RecoverWithContext must be deferred directly. It logs a panic with its
// origin, optional data and the stack trace.
func RecoverWithContext(service, function string, data any) {
	if r := recover(); r != nil {
		report(service, function, r, data)
	}
}

// RecoverExplicit logs an already recovered value.
func RecoverExplicit(service, function string, recovered any, data any) {
	if recovered == nil {
		return
	}
	report(service, function, recovered, data)
}

func report(service, function string, recovered, data any) {
	ev := log.Error().
		Str(tagService, service).
		Str(tagFunction, function).
		Str(tagStack, string(debug.Stack()))
	if data != nil {
		ev = ev.Str(tagContext, fmt.Sprintf("%+v", data))
	}
	ev.Msgf("panic: %v", recovered)

	if OnPanic != nil {
		OnPanic(service, function, recovered)
	}
}

// Safe runs fn and swallows any panic after logging it under label.
func Safe(label string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str(tagLabel, label).Str(tagStack, string(debug.Stack())).Msgf("panic: %v", r)
			if OnPanic != nil {
				OnPanic("Safe", label, r)
			}
		}
	}()
	fn()
}

// RecoverFunc runs fn and converts a panic into an error.
func RecoverFunc(label string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			RecoverExplicit("RecoverFunc", label, r, nil)
			err = fmt.Errorf("%s: panic: %v", label, r)
		}
	}()
	return fn()
}

// RecoverHandler wraps a core.Handler. A panicking handler answers the
// request with a 500 error.
func RecoverHandler(service, function string, next core.Handler) core.Handler {
	return core.HandlerFunc(func(req core.Request) {
		defer func() {
			if r := recover(); r != nil {
				RecoverExplicit(service, function, r, req.Subject())
				_ = req.Error("500", "internal error", nil)
			}
		}()
		next.Handle(req)
	})
}

// Middleware returns a core.Middleware applying RecoverHandler.
func Middleware(service string) core.Middleware {
	return func(next core.Handler) core.Handler {
		return RecoverHandler(service, "endpoint", next)
	}
}

// HTTP wraps an http.Handler and answers 500 after a panic.
func HTTP(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					RecoverExplicit(service, r.Method+" "+r.URL.Path, rec, nil)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverableFunc is a context-aware function that may panic.
type RecoverableFunc func(ctx context.Context) error

// WrapRecover wraps f with panic protection.
func WrapRecover(service, function string, f RecoverableFunc) RecoverableFunc {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				RecoverExplicit(service, function, r, nil)
				err = fmt.Errorf("panic recovered in %s.%s: %v", service, function, r)
			}
		}()
		return f(ctx)
	}
}
