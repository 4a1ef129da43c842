package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// RegisterShutdownHook adds fn to run after the HTTP server stops accepting
// requests. Hooks run in registration order and share the shutdown deadline.
func (s *Server) RegisterShutdownHook(fn func(ctx context.Context) error) {
	s.hooks = append(s.hooks, fn)
}

// ListenAndServe blocks until the server fails or SIGINT/SIGTERM arrives, then
// drains in-flight requests and pending Slack replies.
func (s *Server) ListenAndServe() error {
	httpServer := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", httpServer.Addr,
			"read_timeout", s.cfg.Server.ReadTimeout,
			"write_timeout", s.cfg.Server.WriteTimeout,
		)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-shutdown:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.shutdown(ctx, httpServer)
}

func (s *Server) shutdown(ctx context.Context, httpServer *http.Server) error {
	s.logger.Info("starting graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout)

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, fmt.Errorf("HTTP server shutdown failed: %w", err))
	}

	hooks := s.hooks
	if s.slack != nil {
		hooks = append([]func(context.Context) error{s.slack.Wait}, hooks...)
	}
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			s.logger.Error("shutdown hook failed", "hook_index", i, "error", err)
			errs = append(errs, fmt.Errorf("shutdown hook %d failed: %w", i, err))
		}
	}

	if len(errs) == 0 {
		s.logger.Info("graceful shutdown completed")
	}
	return errors.Join(errs...)
}
