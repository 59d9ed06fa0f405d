// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/juris/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 2 * time.Minute
	DefaultSweepInterval  = 10 * time.Minute
	shutdownTimeout       = 10 * time.Second
	maxBodyBytes          = 64 << 10
)

// Answerer runs one question through the pipeline.
type Answerer interface {
	Query(ctx context.Context, question, userID string) (string, core.QueryOutcome)
}

// Sweeper drops idle per-user state. guard.RateLimiter implements it.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Server is the HTTP transport for juris.
type Server struct {
	answerer       Answerer
	gatherer       prometheus.Gatherer
	sweeper        Sweeper
	sweepInterval  time.Duration
	addr           string
	requestTimeout time.Duration
	logger         *slog.Logger
	handler        http.Handler
	server         *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) error {
		if addr == "" {
			return errors.New("server: address cannot be empty")
		}
		s.addr = addr
		return nil
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return errors.New("server: request timeout must be positive")
		}
		s.requestTimeout = d
		return nil
	}
}

// WithGatherer mounts /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) error {
		s.gatherer = g
		return nil
	}
}

// WithSweeper runs sw.Sweep every interval while the server is started.
func WithSweeper(sw Sweeper, interval time.Duration) Option {
	return func(s *Server) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		s.sweeper, s.sweepInterval = sw, interval
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default().With("component", "server")
		}
		s.logger = logger
		return nil
	}
}

// NewServer builds the router around answerer.
func NewServer(answerer Answerer, opts ...Option) (*Server, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	s := &Server{
		answerer:       answerer,
		addr:           DefaultAddr,
		requestTimeout: DefaultRequestTimeout,
		sweepInterval:  DefaultSweepInterval,
		logger:         slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.sweeper != nil {
		go s.sweep(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		s.logger.Info("shutting down server")
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sweeper.Sweep(now); n > 0 {
				s.logger.Debug("swept idle rate windows", "removed", n)
			}
		}
	}
}
