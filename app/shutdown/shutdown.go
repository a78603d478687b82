package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server is the part of *http.Server that Serve drives. ListenAndServe must
// block until Shutdown is called.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// NotifyContext returns a context that is cancelled when the process is asked
// to terminate by the platform's shutdown signals.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// Serve runs srv until ctx is cancelled, then stops accepting connections and
// waits up to grace for in-flight requests. It returns the first listener or
// shutdown error.
func Serve(ctx context.Context, srv Server, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("Shutting down server gracefully", "grace", grace)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		slog.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
