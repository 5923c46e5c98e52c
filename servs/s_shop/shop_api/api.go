// servs/s_shop/shop_api/api.go
package shop_api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
)

const (
	ServiceName    = "shop"
	ServiceVersion = "0.1.0"

	SubjectUpdate = "update" // bot.Update in, UpdateResponse out
	SubjectNode   = "node"   // NodeRequest in, NodeView out
)

const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// ErrUnavailable is returned while no catalogue has been published.
var ErrUnavailable = errors.New("catalogue is not available")

// IShop is what the transports need from the running service.
type IShop interface {
	Handle(ctx context.Context, u bot.Update) (bot.Reply, bool)
	Node(token string) (NodeView, error)
	Health() Health
}

type UpdateResponse struct {
	Handled bool      `json:"handled"`
	Reply   bot.Reply `json:"reply"`
}

type NodeRequest struct {
	Address string `json:"address"`
}

// NodeView is one catalogue node with its direct children.
type NodeView struct {
	Address  string       `json:"address"`
	Kind     string       `json:"kind"`
	Label    string       `json:"label,omitempty"`
	Product  *bot.Product `json:"product,omitempty"`
	Children []ChildView  `json:"children,omitempty"`
	Version  uint64       `json:"version"`
}

type ChildView struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
}

type Health struct {
	Status  string            `json:"status"`
	Version uint64            `json:"version,omitempty"`
	Source  string            `json:"source,omitempty"`
	Loaded  time.Time         `json:"loaded,omitempty"`
	Stats   catalogue.Stats   `json:"stats"`
	Checks  map[string]string `json:"checks,omitempty"`
	Metrics map[string]int64  `json:"metrics,omitempty"`
}

// View projects the node at token in snap.
func View(snap *bot.Snapshot, token string) (NodeView, error) {
	addr, err := catalogue.ParseAddress(token)
	if err != nil {
		return NodeView{}, err
	}
	if snap == nil {
		return NodeView{}, ErrUnavailable
	}
	node, err := snap.Root.Locate(addr)
	if err != nil {
		return NodeView{}, err
	}

	v := NodeView{
		Address: addr.String(),
		Kind:    node.Kind().String(),
		Label:   bot.Label(node),
		Version: snap.Version,
	}
	if p, ok := node.Item(); ok {
		v.Product = &p
		return v, nil
	}
	for i, n := uint(0), uint(node.Len()); i < n; i++ {
		child, _ := node.Child(i)
		v.Children = append(v.Children, ChildView{
			Address: addr.Join(i).String(),
			Kind:    child.Kind().String(),
			Label:   bot.Label(child),
		})
	}
	return v, nil
}

// HealthOf summarizes snap.
func HealthOf(snap *bot.Snapshot) Health {
	if snap == nil {
		return Health{Status: StatusUnavailable}
	}
	return Health{
		Status:  StatusOK,
		Version: snap.Version,
		Source:  snap.Source,
		Loaded:  snap.Loaded,
		Stats:   snap.Root.Stats(),
	}
}

// StatusOf maps a View error to an HTTP status.
func StatusOf(err error) int {
	var miss *catalogue.MissError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, catalogue.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.As(err, &miss):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf is StatusOf as a service error code.
func CodeOf(err error) string {
	return strconv.Itoa(StatusOf(err))
}
