// Package server exposes a chain over HTTP: a JSON-RPC endpoint for w3sale
// clients, a small REST API for sale and token state, and Prometheus
// metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Logger *zap.Logger
	// RateLimit caps POST requests per client in limiter format ("60-M").
	// Empty disables limiting.
	RateLimit string
	// Exempt lists client IPs the rate limit does not apply to.
	Exempt []string
	// Registry receives the server's metrics. Nil uses a private registry.
	Registry *prometheus.Registry
}

// Server serves one chain backend.
type Server struct {
	backend chain.Backend
	engine  *gin.Engine
	log     *zap.Logger
	metrics *Metrics
}

// New builds the HTTP handler for b. Callers that own the chain should
// register Metrics() as an observer.
func New(b chain.Backend, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics(opts.Registry)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		backend: b,
		engine:  gin.New(),
		log:     opts.Logger,
		metrics: metrics,
	}

	r := s.engine
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(s.log), CORSMiddleware())
	if opts.RateLimit != "" {
		limit, err := LimiterMiddleware(opts.RateLimit, opts.Exempt)
		if err != nil {
			return nil, err
		}
		r.Use(postOnly(limit))
	}

	r.POST("/rpc", s.rpc)
	r.POST("/tx", s.submitTx)
	r.GET("/info", s.getInfo)
	r.GET("/account/:address", s.getAccount)
	r.GET("/sale/:address", s.getSale)
	r.GET("/sale/:address/whitelist", s.getWhitelist)
	r.GET("/token/:address", s.getToken)
	r.GET("/token/:address/balance/:account", s.getTokenBalance)
	r.GET("/receipt/:hash", s.getReceipt)
	r.GET("/events", s.getEvents)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Metrics returns the chain observer feeding /metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
