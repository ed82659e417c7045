package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/flare-dev/flare/pkg/persist"
)

// ServerConfig configures the inspector server.
type ServerConfig struct {
	// Addr is the listen address (default: "localhost:9229").
	Addr string

	// Logger is the server logger. Defaults to slog on stderr.
	Logger *slog.Logger

	// Registry exposes registered signal values on /api/signals.
	// Optional.
	Registry *persist.Registry

	// Gatherer backs the /metrics endpoint.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// ServerOption configures the inspector server.
type ServerOption func(*ServerConfig)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(c *ServerConfig) {
		c.Addr = addr
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(c *ServerConfig) {
		c.Logger = logger
	}
}

// WithSignalRegistry exposes the registry's signal values on /api/signals.
func WithSignalRegistry(reg *persist.Registry) ServerOption {
	return func(c *ServerConfig) {
		c.Registry = reg
	}
}

// WithGatherer sets the Prometheus gatherer for /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(c *ServerConfig) {
		c.Gatherer = g
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.ShutdownTimeout = d
	}
}

// defaultServerConfig returns the default server configuration.
func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            "localhost:9229",
		Logger:          slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Gatherer:        prometheus.DefaultGatherer,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves the inspector API:
//
//	GET /metrics      Prometheus scrape endpoint
//	GET /api/stats    runtime counters as JSON
//	GET /api/signals  registered signal values as JSON
//	GET /ws           live event stream over WebSocket
type Server struct {
	hub      *Hub
	config   ServerConfig
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer creates an inspector server around hub.
func NewServer(hub *Hub, opts ...ServerOption) *Server {
	config := defaultServerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Server{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Inspector is a local debugging endpoint.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:    config.Addr,
		Handler: s.routes(),
	}
	return s
}

// Handler returns the inspector routes for mounting in an external
// router.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/signals", s.handleSignals)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Stats())
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if s.config.Registry == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.config.Registry.Values())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.hub.subscribe()
	defer cancel()

	s.config.Logger.Debug("inspector client connected", "remote", r.RemoteAddr)

	// Reader goroutine detects client close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.config.Logger.Error("websocket write failed", "error", err)
				}
				return
			}
		case <-done:
			return
		}
	}
}

// Start serves the inspector until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.config.Logger.Info("inspector listening", "addr", s.config.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
