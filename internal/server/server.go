// Package server wires the asset roots and the landing route into an HTTP
// listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/publicd/internal/assets"
	"github.com/Kush-Singh-26/publicd/internal/config"
)

// Server serves the configured roots and the landing document.
type Server struct {
	config     *config.Config
	roots      []assets.Root
	handler    http.Handler
	httpServer *http.Server
	out        io.Writer

	started atomic.Bool
	ready   chan struct{}
	addr    string
}

// New creates a Server over the configured roots on the local disk.
func New(cfg *config.Config) *Server {
	return NewWithRoots(cfg, assets.OSRoots(cfg.Roots))
}

// NewWithRoots creates a Server over roots. The landing document is read
// from the first root.
func NewWithRoots(cfg *config.Config, roots []assets.Root) *Server {
	// Force register the WASM mime type
	_ = mime.AddExtensionType(".wasm", "application/wasm")

	var primary afero.Fs = afero.NewMemMapFs()
	if len(roots) > 0 {
		primary = roots[0].Fs
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", landingHandler(primary, cfg.IndexPath()))
	mux.Handle("/", http.NotFoundHandler())

	handler := wrap(assets.New(roots, mux), cfg.Compress, cfg.Minify)

	return &Server{
		config:  cfg,
		roots:   roots,
		handler: handler,
		httpServer: &http.Server{
			Addr:        cfg.Addr(),
			Handler:     handler,
			ReadTimeout: cfg.ReadTimeout,
		},
		out:   os.Stdout,
		ready: make(chan struct{}),
	}
}

// Handler returns the full request handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetOutput redirects status lines, stdout by default.
func (s *Server) SetOutput(w io.Writer) {
	s.out = w
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address. Valid after Ready is closed.
func (s *Server) Addr() string {
	return s.addr
}

// Start binds the listener and serves until ctx is cancelled, then shuts
// down gracefully. A Server can only be started once.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.addr = ln.Addr().String()
	port := s.config.Port
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	_, _ = fmt.Fprintf(s.out, "🌍 listening on port: %d\n", port)
	close(s.ready)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight requests,
// up to the configured shutdown timeout.
func (s *Server) Shutdown() error {
	_, _ = fmt.Fprintln(s.out, "🛑 Shutting down server...")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	_, _ = fmt.Fprintln(s.out, "✅ Server stopped.")
	return nil
}

// Run loads the configuration from args and serves until ctx is done.
func Run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	return New(cfg).Start(ctx)
}
