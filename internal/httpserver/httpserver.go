package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

const sweepInterval = time.Minute

// Handler exposes the routed engine, mostly for tests.
func (srv *HTTPServer) Handler() http.Handler {
	return srv.gin
}

func (srv *HTTPServer) addr() string {
	return net.JoinHostPort(srv.host, strconv.Itoa(srv.port))
}

// Run serves HTTP until ctx is done, then shuts the server down gracefully.
func (srv *HTTPServer) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              srv.addr(),
		Handler:           srv.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	srv.logger.Infof(ctx, "HTTP server started on %s", srv.addr())

	if srv.limiter != nil {
		go srv.sweepLimiter(ctx)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpserver.Run: %w", err)
	case <-ctx.Done():
	}

	srv.logger.Info(context.Background(), "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpserver.Run: shutdown: %w", err)
	}
	return nil
}

func (srv *HTTPServer) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := srv.limiter.Sweep(); n > 0 {
				srv.logger.Debugf(ctx, "httpserver.sweepLimiter: dropped %d idle limiters", n)
			}
		}
	}
}
