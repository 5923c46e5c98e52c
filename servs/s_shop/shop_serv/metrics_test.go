package shop_serv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/config"
	"github.com/zggff/shopbot/servs/s_shop/shop_api"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Inc(MetricCommands)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), m.Get(MetricCommands))

	m.Set("x", 7)
	m.Add("x", -2)
	snap := m.Snapshot()
	assert.Equal(t, int64(5), snap["x"])

	snap["x"] = 100
	assert.Equal(t, int64(5), m.Get("x"))

	r := m.WithPrefix("ws.")
	r.Inc("open")
	r.Inc("open")
	r.Set("peak", 9)
	assert.Equal(t, int64(2), m.Get("ws.open"))
	assert.Equal(t, int64(9), m.Get("ws.peak"))
}

func TestHealthProbes(t *testing.T) {
	s := New(config.Default())

	h := s.Health()
	assert.Equal(t, shop_api.StatusUnavailable, h.Status)
	assert.Equal(t, "not connected", h.Checks["nats"])

	s.store.Swap(sampleRoot(), "test")
	h = s.Health()
	assert.Equal(t, shop_api.StatusDegraded, h.Status)

	s.probes = nil
	s.AddProbe(func() (string, bool, string) { return "disk", true, "fine" })
	s.AddProbe(func() (string, bool, string) { return "", false, "ignored" })
	s.metrics.Inc(MetricReloads)
	h = s.Health()
	assert.Equal(t, shop_api.StatusOK, h.Status)
	assert.Equal(t, map[string]string{"disk": "fine"}, h.Checks)
	assert.Equal(t, int64(1), h.Metrics[MetricReloads])
}

func sampleRoot() bot.Catalogue {
	return catalogue.Group("", catalogue.Leaf[bot.Product, string](bot.Product{Title: "x"}))
}
