package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/zggff/shopbot/pkg/x_log"
)

// Handler handles a single service request.
type Handler interface {
	Handle(Request)
}

// HandlerFunc is an adapter to use functions as handlers.
type HandlerFunc func(Request)

func (fn HandlerFunc) Handle(req Request) {
	fn(req)
}

// Request represents a service request.
type Request interface {
	Respond([]byte, ...RespondOpt) error
	RespondJSON(any, ...RespondOpt) error
	Error(code, description string, data []byte, opts ...RespondOpt) error
	Data() []byte
	Headers() Headers
	Subject() string
	Reply() string
}

// Headers wraps nats.Header.
type Headers nats.Header

// RespondOpt configures a response message.
type RespondOpt func(*nats.Msg)

type request struct {
	msg          *nats.Msg
	respondError error
}

// ServiceError is the error a handler reported through Request.Error.
type ServiceError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s:%s", e.Code, e.Description)
}

var (
	ErrRespond         = errors.New("NATS error when sending response")
	ErrMarshalResponse = errors.New("marshaling response")
	ErrArgRequired     = errors.New("argument required")
)

// ContextHandler binds ctx to fn.
func ContextHandler(ctx context.Context, fn func(context.Context, Request)) Handler {
	return HandlerFunc(func(req Request) {
		fn(ctx, req)
	})
}

func (r *request) Respond(data []byte, opts ...RespondOpt) error {
	respMsg := &nats.Msg{Data: data}
	for _, opt := range opts {
		opt(respMsg)
	}
	if err := r.msg.RespondMsg(respMsg); err != nil {
		r.respondError = fmt.Errorf("%w: %s", ErrRespond, err)
		x_log.Error().Str("subject", r.msg.Subject).Err(err).Msg("failed to respond")
		return r.respondError
	}
	return nil
}

func (r *request) RespondJSON(value any, opts ...RespondOpt) error {
	data, err := json.Marshal(value)
	if err != nil {
		x_log.Error().Str("subject", r.msg.Subject).Err(err).Msg("failed to marshal JSON")
		return ErrMarshalResponse
	}
	return r.Respond(data, opts...)
}

// Error sends an error response carrying code and description in headers.
func (r *request) Error(code, description string, data []byte, opts ...RespondOpt) error {
	if code == "" {
		return fmt.Errorf("%w: error code", ErrArgRequired)
	}
	if description == "" {
		return fmt.Errorf("%w: description", ErrArgRequired)
	}

	msg := &nats.Msg{
		Header: nats.Header{
			ErrorHeader:     []string{description},
			ErrorCodeHeader: []string{code},
		},
		Data: data,
	}
	for _, opt := range opts {
		opt(msg)
	}

	if err := r.msg.RespondMsg(msg); err != nil {
		r.respondError = err
		x_log.Error().Str("subject", r.msg.Subject).Str("code", code).
			Str("description", description).Err(err).Msg("failed to send error response")
		return err
	}

	r.respondError = &ServiceError{Code: code, Description: description}
	return nil
}

// WithHeaders adds headers to a response message.
func WithHeaders(headers Headers) RespondOpt {
	return func(m *nats.Msg) {
		if m.Header == nil {
			m.Header = nats.Header{}
		}
		for k, v := range headers {
			m.Header[k] = v
		}
	}
}

func (r *request) Data() []byte     { return r.msg.Data }
func (r *request) Headers() Headers { return Headers(r.msg.Header) }
func (r *request) Subject() string  { return r.msg.Subject }
func (r *request) Reply() string    { return r.msg.Reply }

// Get returns the first header value for a key.
func (h Headers) Get(key string) string {
	return nats.Header(h).Get(key)
}

// Values returns all header values for a key.
func (h Headers) Values(key string) []string {
	return nats.Header(h).Values(key)
}

// DecodeJSON unmarshals the request payload into v and answers 400 on failure.
func DecodeJSON(req Request, v any) bool {
	if err := json.Unmarshal(req.Data(), v); err != nil {
		_ = req.Error("400", "invalid JSON: "+err.Error(), nil)
		return false
	}
	return true
}

// ResponseError extracts the service error carried by a response, if any.
func ResponseError(msg *nats.Msg) error {
	if msg == nil || msg.Header == nil {
		return nil
	}
	code := msg.Header.Get(ErrorCodeHeader)
	if code == "" {
		return nil
	}
	return &ServiceError{Code: code, Description: msg.Header.Get(ErrorHeader)}
}
