// Package core is a small NATS micro-service layer: named services expose
// request/reply endpoints plus the PING, INFO and STATS control verbs.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"

	"github.com/zggff/shopbot/pkg/x_log"
)

// Service is a running micro-service bound to a NATS connection.
type Service interface {
	Init() error
	Start() error
	AddEndpoint(string, Handler, ...EndpointOpt) error
	AddGroup(string, ...GroupOpt) Group
	ID() string
	Info() Info
	Stats() Stats
	Reset()
	Stop() error
	Stopped() bool
}

type service struct {
	Config

	m               sync.Mutex
	id              string
	endpoints       []*Endpoint
	verbSubs        map[string]*nats.Subscription
	started         time.Time
	nc              *nats.Conn
	natsHandlers    handlers
	stopped         bool
	initialized     bool
	asyncDispatcher *asyncCallbacks
}

// AddService creates a service on nc. Endpoints may be added before or after
// Start.
func AddService(nc *nats.Conn, config Config) Service {
	if config.Metadata == nil {
		config.Metadata = map[string]string{}
	}
	return &service{
		Config:          config,
		nc:              nc,
		id:              nuid.Next(),
		verbSubs:        make(map[string]*nats.Subscription),
		asyncDispatcher: newAsyncCallbacks(),
	}
}

func (s *service) Init() error {
	if err := s.Config.valid(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func (s *service) Start() error {
	if !s.initialized {
		if err := s.Init(); err != nil {
			return err
		}
	}

	go s.asyncDispatcher.run()
	s.wrapConnectionEventCallbacks()

	pingResp := Ping{ServiceIdentity: s.serviceIdentity(), Type: PingResponseType}

	handleVerb := func(verb Verb, valuef func() any) HandlerFunc {
		return func(req Request) {
			if err := req.RespondJSON(valuef()); err != nil {
				x_log.Error().Str("verb", verb.String()).Err(err).Msg("error responding to verb")
				if s.ErrorHandler != nil {
					nerr := &NATSError{Subject: req.Subject(), Description: err.Error()}
					s.asyncDispatcher.push(func() { s.ErrorHandler(s, nerr) })
				}
				if s.OnError != nil {
					s.OnError(s, err)
				}
			}
		}
	}

	for verb, source := range map[Verb]func() any{
		PingVerb:  func() any { return pingResp },
		InfoVerb:  func() any { return s.Info() },
		StatsVerb: func() any { return s.Stats() },
	} {
		if err := s.addVerbHandlers(verb, handleVerb(verb, source)); err != nil {
			s.asyncDispatcher.close()
			if s.OnError != nil {
				s.OnError(s, err)
			}
			return err
		}
	}

	s.m.Lock()
	s.started = time.Now().UTC()
	s.m.Unlock()

	if s.OnStart != nil {
		s.OnStart(s)
	}

	x_log.Info().Str("name", s.Name).Str("version", s.Version).Str("id", s.id).
		Int("endpoints", len(s.endpoints)).Msg("service started")
	return nil
}

// AddGroup creates a new endpoint group.
func (s *service) AddGroup(name string, opts ...GroupOpt) Group {
	var o groupOpts
	for _, opt := range opts {
		opt(&o)
	}
	qg, noQ := resolveQueueGroup(o.queueGroup, s.QueueGroup, o.qgDisabled, s.QueueGroupDisabled)
	return &group{
		service:            s,
		prefix:             name,
		queueGroup:         qg,
		queueGroupDisabled: noQ,
	}
}

// addVerbHandlers subscribes handler on the all, name and name.id control
// subjects of verb.
func (s *service) addVerbHandlers(verb Verb, handler HandlerFunc) error {
	kinds := []struct {
		key  string
		name string
		id   string
	}{
		{verb.String() + ".all", "", ""},
		{verb.String() + ".kind", s.Name, ""},
		{verb.String() + ".id", s.Name, s.id},
	}
	for _, k := range kinds {
		subj, err := ControlSubject(verb, k.name, k.id)
		if err != nil {
			_ = s.Stop()
			return err
		}
		sub, err := s.nc.Subscribe(subj, func(msg *nats.Msg) {
			handler(&request{msg: msg})
		})
		if err != nil {
			_ = s.Stop()
			return fmt.Errorf("subscribe %q: %w", subj, err)
		}
		s.m.Lock()
		s.verbSubs[k.key] = sub
		s.m.Unlock()
	}
	return nil
}

// Stop drains every subscription and fires the stop hooks once.
func (s *service) Stop() error {
	s.m.Lock()
	if s.stopped {
		s.m.Unlock()
		return nil
	}
	s.stopped = true
	endpoints := slices.Clone(s.endpoints)
	s.m.Unlock()

	for _, e := range endpoints {
		if err := e.stop(); err != nil {
			if s.OnError != nil {
				s.OnError(s, err)
			}
			x_log.Error().Str("name", e.Name).Str("subject", e.Subject).Err(err).Msg("failed to stop endpoint")
			return err
		}
	}

	s.m.Lock()
	subs := s.verbSubs
	s.verbSubs = make(map[string]*nats.Subscription)
	s.m.Unlock()

	for _, sub := range subs {
		if !sub.IsValid() || s.nc == nil || s.nc.IsClosed() {
			continue
		}
		if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("draining %q: %w", sub.Subject, err)
		}
	}

	if s.nc != nil {
		unwrapConnectionEventCallbacks(s.nc, s.natsHandlers)
	}

	x_log.Info().Str("service", s.Name).Msg("service stopped")

	if s.OnStop != nil {
		s.OnStop(s)
	}
	if s.DoneHandler != nil {
		s.asyncDispatcher.push(func() { s.DoneHandler(s) })
	}
	s.asyncDispatcher.close()
	return nil
}

func (s *service) Stopped() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.stopped
}

func (s *service) ID() string {
	return s.id
}

// Info returns the current service metadata.
func (s *service) Info() Info {
	s.m.Lock()
	defer s.m.Unlock()

	endpoints := make([]EndpointInfo, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		meta := map[string]string{}
		for k, v := range e.Metadata {
			meta[k] = v
		}
		endpoints = append(endpoints, EndpointInfo{
			Name:       e.Name,
			Subject:    e.Subject,
			QueueGroup: e.QueueGroup,
			Metadata:   meta,
		})
	}

	return Info{
		ServiceIdentity: s.serviceIdentity(),
		Type:            InfoResponseType,
		Description:     s.Description,
		Endpoints:       endpoints,
	}
}

func (s *service) serviceIdentity() ServiceIdentity {
	return ServiceIdentity{
		Name:     s.Name,
		ID:       s.id,
		Version:  s.Version,
		Metadata: s.Metadata,
	}
}

// matchSubscriptionSubject finds the endpoint owning subj.
func (s *service) matchSubscriptionSubject(subj string) (*Endpoint, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	for _, sub := range s.verbSubs {
		if sub.Subject == subj {
			return nil, true
		}
	}
	for _, e := range s.endpoints {
		if matchEndpointSubject(e.Subject, subj) {
			return e, true
		}
	}
	return nil, false
}

// DecodeInfo parses an INFO response.
func DecodeInfo(data []byte) (Info, error) {
	var info Info
	err := json.Unmarshal(data, &info)
	return info, err
}

// DecodeStats parses a STATS response.
func DecodeStats(data []byte) (Stats, error) {
	var stats Stats
	err := json.Unmarshal(data, &stats)
	return stats, err
}
