// servs/s_shop/shop_client/client.go
package shop_client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/core"
	"github.com/zggff/shopbot/servs/s_shop/shop_api"
)

const DefaultTimeout = 2 * time.Second

type Client interface {
	Send(ctx context.Context, u bot.Update) (bot.Reply, bool, error)
	Node(ctx context.Context, address string) (shop_api.NodeView, error)
	Ping(ctx context.Context) error
	Info(ctx context.Context) (core.Info, error)
	Stats(ctx context.Context) (core.Stats, error)
}

type client struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
}

// New returns a Client for the shop service whose endpoints live under
// prefix.
func New(nc *nats.Conn, prefix string) Client {
	return &client{
		nc:      nc,
		prefix:  prefix,
		timeout: DefaultTimeout,
	}
}

func (c *client) Send(ctx context.Context, u bot.Update) (bot.Reply, bool, error) {
	var out shop_api.UpdateResponse
	if err := c.call(ctx, shop_api.SubjectUpdate, u, &out); err != nil {
		return bot.Reply{}, false, err
	}
	return out.Reply, out.Handled, nil
}

func (c *client) Node(ctx context.Context, address string) (shop_api.NodeView, error) {
	var view shop_api.NodeView
	err := c.call(ctx, shop_api.SubjectNode, shop_api.NodeRequest{Address: address}, &view)
	return view, err
}

func (c *client) Ping(ctx context.Context) error {
	subj, err := core.ControlSubject(core.PingVerb, shop_api.ServiceName, "")
	if err != nil {
		return err
	}
	_, err = c.request(ctx, subj, nil)
	return err
}

func (c *client) Info(ctx context.Context) (core.Info, error) {
	subj, err := core.ControlSubject(core.InfoVerb, shop_api.ServiceName, "")
	if err != nil {
		return core.Info{}, err
	}
	msg, err := c.request(ctx, subj, nil)
	if err != nil {
		return core.Info{}, err
	}
	return core.DecodeInfo(msg.Data)
}

func (c *client) Stats(ctx context.Context) (core.Stats, error) {
	subj, err := core.ControlSubject(core.StatsVerb, shop_api.ServiceName, "")
	if err != nil {
		return core.Stats{}, err
	}
	msg, err := c.request(ctx, subj, nil)
	if err != nil {
		return core.Stats{}, err
	}
	return core.DecodeStats(msg.Data)
}

func (c *client) call(ctx context.Context, name string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	msg, err := c.request(ctx, c.prefix+"."+name, data)
	if err != nil {
		return err
	}
	if err := core.ResponseError(msg); err != nil {
		return err
	}
	if err := json.Unmarshal(msg.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}

// request applies the default timeout unless ctx already has a deadline.
func (c *client) request(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.nc.RequestWithContext(ctx, subject, data)
}
