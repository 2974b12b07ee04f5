// @title           Property Import Backend API
// @version         1.0.0
// @description     Media upload gateway and property listing import pipeline. Uploads go to Cloudinary; scraped listings are re-hosted and written to the document store.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"property-import-backend/internal/app"
	"property-import-backend/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.SlogLevel())
	defer closeLog()
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(context.Background(), cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialise application", "error", err)
		return err
	}
	defer a.Close()

	if cfg.EnableScheduler {
		a.Scheduler.Start()
		logger.Info("import scheduler started", "sources", a.Scheduler.Scheduled())
	}

	httpServer := newHTTPServer(cfg.Port, a.Router())
	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		logger.Error("failed to listen", "addr", httpServer.Addr, "error", err)
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	logger.Info("server starting", "port", cfg.Port, "store", cfg.DocumentStore)
	return serve(httpServer, ln, quit, logger)
}

// newHTTPServer has no ReadTimeout: video uploads may take longer than any
// fixed budget. Only the headers are bounded.
func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// scrape and run requests wait for the whole pipeline
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// serve runs srv on ln until it fails or a signal arrives on quit, then
// shuts it down gracefully.
func serve(srv *http.Server, ln net.Listener, quit <-chan os.Signal, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server error", "error", err)
		return err
	case sig := <-quit:
		logger.Info("shutting down server...", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
