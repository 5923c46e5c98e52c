// servs/s_shop/shop_serv/service.go
package shop_serv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/config"
	"github.com/zggff/shopbot/core"
	"github.com/zggff/shopbot/pkg/x_log"
	"github.com/zggff/shopbot/recover"
	"github.com/zggff/shopbot/servs/s_shop/shop_api"
	"github.com/zggff/shopbot/source"
)

const (
	readyTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Service is the running shop: the catalogue store, the bot handler and
// the NATS and HTTP transports in front of it.
type Service struct {
	cfg *config.Config
	log zerolog.Logger

	store   *bot.Store
	handler *bot.Handler
	hub     *shop_api.Hub
	metrics *Metrics
	probes  []Probe

	ns   *server.Server
	nc   *nats.Conn
	core core.Service

	httpSrv *http.Server
	httpLn  net.Listener

	ready  chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var _ shop_api.IShop = (*Service)(nil)

// New prepares a service; nothing is started until Init.
func New(cfg *config.Config) *Service {
	metrics := NewMetrics()
	s := &Service{
		cfg:     cfg,
		log:     x_log.New("shop"),
		store:   &bot.Store{},
		hub:     shop_api.NewHub(shop_api.WithCounter(metrics.WithPrefix(MetricPrefixWS))),
		metrics: metrics,
		ready:   make(chan struct{}),
	}
	s.probes = []Probe{s.natsProbe}
	return s
}

// Init loads the catalogue, connects to NATS and registers the endpoints.
func (s *Service) Init() error {
	root, err := source.LoadFile[bot.Product, string](s.cfg.Catalogue.File, s.cfg.Catalogue.Format)
	if err != nil {
		return err
	}
	snap := s.store.Swap(root, s.cfg.Catalogue.File)
	st := snap.Root.Stats()
	s.log.Info().Str("file", snap.Source).Int("leaves", st.Leaves).Int("groups", st.Groups).
		Msg("catalogue loaded")

	s.handler = bot.NewHandler(s.store,
		bot.WithBotName(s.cfg.Bot.Name),
		bot.WithPageSize(s.cfg.Bot.PageSize),
		bot.WithLogger(x_log.New("bot")),
	)

	url := s.cfg.NATS.URL
	if s.cfg.NATS.Embedded {
		if url, err = s.startServer(); err != nil {
			return err
		}
	}
	nc, err := nats.Connect(url, nats.Name(shop_api.ServiceName))
	if err != nil {
		s.shutdownServer()
		return fmt.Errorf("nats client connect: %w", err)
	}
	s.nc = nc

	s.core = core.AddService(nc, core.Config{
		Name:         shop_api.ServiceName,
		Version:      shop_api.ServiceVersion,
		Description:  "catalogue browsing bot",
		QueueGroup:   s.cfg.NATS.QueueGroup,
		Metadata:     map[string]string{"catalogue": s.cfg.Catalogue.File},
		Middleware:   []core.Middleware{recover.Middleware(shop_api.ServiceName), core.Logging()},
		StatsHandler: s.endpointStats,
	})
	if err := s.core.Init(); err != nil {
		return err
	}

	g := s.core.AddGroup(s.cfg.NATS.SubjectPrefix)
	if err := g.AddEndpoint(shop_api.SubjectUpdate, core.HandlerFunc(s.handleUpdate)); err != nil {
		return err
	}
	return g.AddEndpoint(shop_api.SubjectNode, core.HandlerFunc(s.handleNode))
}

func (s *Service) startServer() (string, error) {
	opts := &server.Options{
		Host:   s.cfg.NATS.Host,
		Port:   s.cfg.NATS.Port,
		NoSigs: true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return "", fmt.Errorf("nats-server init: %w", err)
	}
	s.ns = ns
	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return "", fmt.Errorf("nats-server not ready")
	}
	s.log.Info().Str("url", ns.ClientURL()).Msg("embedded nats-server started")
	return ns.ClientURL(), nil
}

// Start publishes the service and starts the HTTP server and the watcher.
// Background work stops when ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if err := s.core.Start(); err != nil {
		return err
	}

	if s.cfg.HTTP.Enabled {
		ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("http listen %s: %w", s.cfg.HTTP.Addr, err)
		}
		s.httpLn = ln
		s.httpSrv = &http.Server{
			Handler:           shop_api.Router(s, s.hub),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.log.Info().Str("addr", ln.Addr().String()).Msg("http listening")
			if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error().Err(err).Msg("http server failed")
			}
		}()
	}

	if s.cfg.Catalogue.Watch {
		w := &source.Watcher[bot.Product, string]{
			Path:     s.cfg.Catalogue.File,
			Format:   s.cfg.Catalogue.Format,
			Store:    s.store,
			OnReload: s.onReload,
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			err := recover.WrapRecover(shop_api.ServiceName, "watch", w.Run)(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("catalogue watcher stopped")
			}
		}()
	}

	close(s.ready)
	return nil
}

// Ready is closed once Start has succeeded.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Run is Init, Start and Stop around the lifetime of ctx.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Init(); err != nil {
		_ = s.Stop()
		return err
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Stop()
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop shuts the transports down in reverse order. It is safe to call
// more than once.
func (s *Service) Stop() error {
	var errs []error
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := s.httpSrv.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("http shutdown: %w", err))
			}
			cancel()
		}
		if s.core != nil {
			if err := s.core.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		if s.nc != nil {
			s.nc.Close()
		}
		s.shutdownServer()
		s.wg.Wait()
		s.log.Info().Msg("shop stopped")
	})
	return errors.Join(errs...)
}

func (s *Service) shutdownServer() {
	if s.ns != nil {
		s.ns.Shutdown()
		s.ns.WaitForShutdown()
	}
}

func (s *Service) onReload(snap *bot.Snapshot, err error) {
	if err != nil {
		s.metrics.Inc(MetricReloadErrors)
		return
	}
	s.metrics.Inc(MetricReloads)
	s.hub.Broadcast(shop_api.Event{Type: shop_api.EventReload, Version: snap.Version})
}

// ----------------------------------------------------
// shop_api.IShop
// ----------------------------------------------------

func (s *Service) Handle(ctx context.Context, u bot.Update) (bot.Reply, bool) {
	reply, ok := s.handler.Handle(ctx, u)
	switch {
	case !ok:
		s.metrics.Inc(MetricIgnored)
	case u.IsCallback():
		s.metrics.Inc(MetricCallbacks)
	default:
		s.metrics.Inc(MetricCommands)
	}
	if reply.Text == bot.TextInvalidSelection {
		s.metrics.Inc(MetricInvalid)
	}
	return reply, ok
}

func (s *Service) Node(token string) (shop_api.NodeView, error) {
	return shop_api.View(s.store.Load(), token)
}

// ----------------------------------------------------
// Accessors
// ----------------------------------------------------

func (s *Service) Store() *bot.Store  { return s.store }
func (s *Service) Core() core.Service { return s.core }
func (s *Service) Hub() *shop_api.Hub { return s.hub }
func (s *Service) Conn() *nats.Conn   { return s.nc }
func (s *Service) Metrics() *Metrics  { return s.metrics }

// HTTPAddr is the bound HTTP address, or "" when HTTP is off.
func (s *Service) HTTPAddr() string {
	if s.httpLn == nil {
		return ""
	}
	return s.httpLn.Addr().String()
}

// ----------------------------------------------------
// NATS endpoints
// ----------------------------------------------------

func (s *Service) endpointStats(*core.Endpoint) any {
	return s.metrics.Snapshot()
}

func (s *Service) handleUpdate(req core.Request) {
	var u bot.Update
	if !core.DecodeJSON(req, &u) {
		return
	}
	reply, ok := s.Handle(context.Background(), u)
	_ = req.RespondJSON(shop_api.UpdateResponse{Handled: ok, Reply: reply})
}

func (s *Service) handleNode(req core.Request) {
	var in shop_api.NodeRequest
	if len(req.Data()) > 0 && !core.DecodeJSON(req, &in) {
		return
	}
	view, err := s.Node(in.Address)
	if err != nil {
		_ = req.Error(shop_api.CodeOf(err), err.Error(), nil)
		return
	}
	_ = req.RespondJSON(view)
}
