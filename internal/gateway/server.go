package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"addictiontube/internal/config"
	"addictiontube/internal/middleware"
	"addictiontube/internal/proxy"
	"addictiontube/internal/search"
	"addictiontube/internal/searchui"
	"addictiontube/internal/upstream"
	"addictiontube/web"
)

// Server is the HTTP gateway: proxy endpoints, the search page and its
// assets, health and metrics.
type Server struct {
	cfg      *config.Config
	log      *logrus.Logger
	handlers map[string]*proxy.Handler
	handler  http.Handler
}

// New wires every route of cfg. client may be nil to use a default
// upstream.Client built from cfg.
func New(cfg *config.Config, client proxy.Getter, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if client == nil {
		client = upstream.New(upstream.Options{Timeout: cfg.Gateway.UpstreamTimeout, Logger: log})
	}

	routes, err := proxy.RoutesFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, log: log}
	mux := http.NewServeMux()
	s.handlers = proxy.Register(mux, routes, client, log)

	unified, ok := s.handlers[cfg.UnifiedSearchRoute]
	if !ok {
		return nil, fmt.Errorf("unified search route %q is not registered", cfg.UnifiedSearchRoute)
	}
	page, err := searchui.NewPage(web.Templates(), pageSearcher(unified), log)
	if err != nil {
		return nil, err
	}
	mux.Handle("GET /unified-search.php", page)
	mux.Handle("GET /unified/unified-search.php", page)

	static := http.FileServerFS(web.Static())
	mux.Handle("GET /js/", static)
	mux.Handle("GET /css/", static)

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(log),
		middleware.CORS(cfg.Gateway.CORSOrigins),
	)
	return s, nil
}

// pageSearcher runs the unified search route in-process so the no-script
// page sees exactly what the browser script would.
func pageSearcher(h *proxy.Handler) searchui.Searcher {
	return func(ctx context.Context, req search.Request) ([]byte, error) {
		_, body := h.Serve(ctx, url.Values{"q": {req.Query}, "category": {req.Category}})
		return body, nil
	}
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Gateway.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("gateway.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.Gateway.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("gateway.shutdown")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
