package core

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/zggff/shopbot/pkg/x_log"
)

// Endpoint is a registered service endpoint.
type Endpoint struct {
	EndpointConfig
	Name string

	service      *service
	stats        EndpointStats
	subscription *nats.Subscription
}

// EndpointConfig holds the subscription settings of an endpoint.
type EndpointConfig struct {
	Subject            string            `json:"subject"`
	Handler            Handler           `json:"-"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	QueueGroup         string            `json:"queue_group"`
	QueueGroupDisabled bool              `json:"queue_group_disabled"`
}

// EndpointOpt customizes an endpoint.
type EndpointOpt func(*endpointOpts) error

type endpointOpts struct {
	subject    string
	metadata   map[string]string
	queueGroup string
	qgDisabled bool
	middleware []Middleware
}

func (s *service) AddEndpoint(name string, handler Handler, opts ...EndpointOpt) error {
	return s.addEndpoint("", name, s.QueueGroup, s.QueueGroupDisabled, handler, opts...)
}

func (s *service) addEndpoint(prefix, name, parentQG string, parentQGDisabled bool, handler Handler, opts ...EndpointOpt) error {
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrConfigValidation, name)
	}
	var options endpointOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return err
		}
	}

	subject := options.subject
	if subject == "" {
		subject = name
	}
	subject = joinParts(prefix, subject)

	queueGroup, noQueue := resolveQueueGroup(options.queueGroup, parentQG, options.qgDisabled, parentQGDisabled)

	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w: invalid endpoint name %q", ErrConfigValidation, name)
	}
	if !subjectRegexp.MatchString(subject) {
		return fmt.Errorf("%w: invalid endpoint subject %q", ErrConfigValidation, subject)
	}
	if queueGroup != "" && !subjectRegexp.MatchString(queueGroup) {
		return fmt.Errorf("%w: invalid queue group %q", ErrConfigValidation, queueGroup)
	}

	s.m.Lock()
	defer s.m.Unlock()

	for _, ep := range s.endpoints {
		if ep.Name == name {
			return fmt.Errorf("%w: duplicate endpoint name %q", ErrConfigValidation, name)
		}
		if ep.Subject == subject {
			return fmt.Errorf("%w: duplicate endpoint subject %q", ErrConfigValidation, subject)
		}
	}

	h := Chain(handler, options.middleware...)
	h = Chain(h, s.Middleware...)

	ep := &Endpoint{
		service: s,
		Name:    name,
		EndpointConfig: EndpointConfig{
			Subject:            subject,
			Handler:            h,
			Metadata:           options.metadata,
			QueueGroup:         queueGroup,
			QueueGroupDisabled: noQueue,
		},
	}

	cb := func(m *nats.Msg) {
		s.reqHandler(ep, &request{msg: m})
	}

	var (
		sub *nats.Subscription
		err error
	)
	if noQueue {
		sub, err = s.nc.Subscribe(subject, cb)
	} else {
		sub, err = s.nc.QueueSubscribe(subject, queueGroup, cb)
	}
	if err != nil {
		x_log.Error().Str("name", name).Str("subject", subject).Err(err).Msg("failed to subscribe endpoint")
		return err
	}

	ep.subscription = sub
	ep.stats = EndpointStats{
		Name:       name,
		Subject:    subject,
		QueueGroup: queueGroup,
	}
	s.endpoints = append(s.endpoints, ep)

	x_log.Info().Str("name", name).Str("subject", subject).Str("queue_group", queueGroup).Msg("endpoint subscribed")
	return nil
}

// stop drains the endpoint subscription.
func (e *Endpoint) stop() error {
	s := e.service
	if e.subscription == nil {
		return nil
	}

	if e.subscription.IsValid() && s.nc != nil && !s.nc.IsClosed() {
		if err := e.subscription.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("draining %q: %w", e.Subject, err)
		}
	}

	s.m.Lock()
	for i, ep := range s.endpoints {
		if ep == e {
			s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)
			break
		}
	}
	s.m.Unlock()
	return nil
}

// WithEndpointSubject sets a custom subject.
func WithEndpointSubject(subject string) EndpointOpt {
	return func(e *endpointOpts) error {
		e.subject = subject
		return nil
	}
}

// WithEndpointMetadata sets custom metadata.
func WithEndpointMetadata(metadata map[string]string) EndpointOpt {
	return func(e *endpointOpts) error {
		e.metadata = metadata
		return nil
	}
}

// WithEndpointQueueGroup sets a custom queue group.
func WithEndpointQueueGroup(queueGroup string) EndpointOpt {
	return func(e *endpointOpts) error {
		e.queueGroup = queueGroup
		return nil
	}
}

// WithEndpointQueueGroupDisabled subscribes without a queue group.
func WithEndpointQueueGroupDisabled() EndpointOpt {
	return func(e *endpointOpts) error {
		e.qgDisabled = true
		return nil
	}
}

// WithEndpointMiddleware wraps only this endpoint's handler.
func WithEndpointMiddleware(mw ...Middleware) EndpointOpt {
	return func(e *endpointOpts) error {
		e.middleware = append(e.middleware, mw...)
		return nil
	}
}
