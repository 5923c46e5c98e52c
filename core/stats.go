package core

import (
	"encoding/json"
	"time"

	"github.com/zggff/shopbot/pkg/x_log"
)

// Stats contains runtime stats for all endpoints.
type Stats struct {
	ServiceIdentity
	Type      string           `json:"type"`
	Started   time.Time        `json:"started"`
	Endpoints []*EndpointStats `json:"endpoints"`
}

// EndpointStats holds runtime statistics for an endpoint.
type EndpointStats struct {
	Name                  string          `json:"name"`
	Subject               string          `json:"subject"`
	QueueGroup            string          `json:"queue_group"`
	NumRequests           int             `json:"num_requests"`
	NumErrors             int             `json:"num_errors"`
	LastError             string          `json:"last_error"`
	ProcessingTime        time.Duration   `json:"processing_time"`
	AverageProcessingTime time.Duration   `json:"average_processing_time"`
	MinProcessingTime     time.Duration   `json:"min_processing_time,omitempty"`
	MaxProcessingTime     time.Duration   `json:"max_processing_time,omitempty"`
	LastRequestTime       time.Time       `json:"last_request_time,omitempty"`
	Data                  json.RawMessage `json:"data,omitempty"`
}

// reqHandler runs one request and records its timing and outcome.
func (s *service) reqHandler(endpoint *Endpoint, req *request) {
	start := time.Now()
	endpoint.Handler.Handle(req)
	dur := time.Since(start)

	s.m.Lock()
	defer s.m.Unlock()

	st := &endpoint.stats
	st.LastRequestTime = time.Now().UTC()
	st.NumRequests++
	st.ProcessingTime += dur
	st.AverageProcessingTime = st.ProcessingTime / time.Duration(st.NumRequests)
	if dur < st.MinProcessingTime || st.MinProcessingTime == 0 {
		st.MinProcessingTime = dur
	}
	if dur > st.MaxProcessingTime {
		st.MaxProcessingTime = dur
	}
	if req.respondError != nil {
		st.NumErrors++
		st.LastError = req.respondError.Error()
	}
}

// Stats returns statistics for all registered endpoints.
func (s *service) Stats() Stats {
	s.m.Lock()
	defer s.m.Unlock()

	stats := Stats{
		ServiceIdentity: s.serviceIdentity(),
		Type:            StatsResponseType,
		Started:         s.started,
		Endpoints:       make([]*EndpointStats, 0, len(s.endpoints)),
	}

	for _, ep := range s.endpoints {
		es := ep.stats
		es.Data = nil
		if s.StatsHandler != nil {
			if data, err := json.Marshal(s.StatsHandler(ep)); err == nil {
				es.Data = data
			} else {
				x_log.Error().Str("endpoint", ep.Name).Err(err).Msg("failed to serialize custom stats")
			}
		}
		stats.Endpoints = append(stats.Endpoints, &es)
	}
	return stats
}

// Reset clears collected stats and restarts the clock.
func (s *service) Reset() {
	s.m.Lock()
	defer s.m.Unlock()

	for _, ep := range s.endpoints {
		ep.stats = EndpointStats{
			Name:       ep.stats.Name,
			Subject:    ep.stats.Subject,
			QueueGroup: ep.stats.QueueGroup,
		}
	}
	s.started = time.Now().UTC()
}
