// file: shopbot/servs/s_shop/shop_serv/health.go
package shop_serv

import (
	"github.com/zggff/shopbot/servs/s_shop/shop_api"
)

// Probe reports one component. ok=false marks the service degraded.
type Probe func() (key string, ok bool, info string)

// AddProbe registers a health probe. Probes must be added before Start.
func (s *Service) AddProbe(p Probe) {
	s.probes = append(s.probes, p)
}

func (s *Service) natsProbe() (string, bool, string) {
	if s.nc == nil {
		return "nats", false, "not connected"
	}
	return "nats", s.nc.IsConnected(), s.nc.Status().String()
}

// Health summarizes the catalogue and runs the probes. A missing catalogue
// wins over a failing probe.
func (s *Service) Health() shop_api.Health {
	h := shop_api.HealthOf(s.store.Load())
	h.Metrics = s.metrics.Snapshot()

	for _, probe := range s.probes {
		key, ok, info := probe()
		if key == "" {
			continue
		}
		if h.Checks == nil {
			h.Checks = make(map[string]string)
		}
		h.Checks[key] = info
		if !ok && h.Status == shop_api.StatusOK {
			h.Status = shop_api.StatusDegraded
		}
	}
	return h
}
