// Package server exposes the store over HTTP.
//
// Every request carries the configured credentials in its query string
// (?username=...&password=...). Responses are JSON envelopes of the form
//
//	{"status": "200 OK", "response": ..., "database": ..., "table": ...}
//
// Reads that find nothing answer with an empty array, never an error; the
// precise store status is logged.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/calvinalkan/flatdb/internal/store"
)

// Options configures [New].
type Options struct {
	// Username and Password are the required query credentials. Password may
	// be a bcrypt hash.
	Username string
	Password string

	// RateLimit is the allowed requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64
	RateBurst int

	// Logger receives access and error records. Nil uses [slog.Default].
	Logger *slog.Logger
}

// Server is the HTTP front of a [store.Store].
type Server struct {
	store   *store.Store
	auth    credentials
	limiter *rate.Limiter
	log     *slog.Logger
	handler http.Handler
}

// New builds a server for st.
func New(st *store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store: st,
		auth:  credentials{username: opts.Username, password: opts.Password},
		log:   logger,
	}

	if opts.RateLimit > 0 {
		burst := max(opts.RateBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.handler = s.withRequestID(s.withAccessLog(s.withRateLimit(s.withAuth(mux))))

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Serve listens on addr until ctx is done, then shuts down gracefully.
// ready, when non-nil, receives the bound address once listening.
//
// With no username and password configured, any request with empty
// credentials passes; Serve logs a warning when it starts that way.
func (s *Server) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	if ready != nil {
		ready(ln.Addr())
	}

	s.log.InfoContext(ctx, "server started", "addr", ln.Addr().String())

	if s.auth.open() {
		s.log.WarnContext(ctx, "no credentials configured, requests must send an empty username and password")
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
