package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pharmapool.backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// serveHTTP serves handler until ctx is done, then stops accepting
// connections and waits up to drain for in-flight requests.
func serveHTTP(ctx context.Context, handler http.Handler, addr string, drain time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
