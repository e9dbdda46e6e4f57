package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-highlighter/internal/config"
	"pdf-highlighter/internal/handler"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	logger := container.GetLogger()
	cfg := container.GetConfig()

	// Handlers
	router := handler.NewRouter(
		handler.NewHighlightHandler(container.ViewerService, logger),
		handler.NewSessionHandler(container.ViewerService, cfg.GetMaxFileSize(), logger),
		handler.NewViewportHandler(container.ViewerService, logger),
		container.Metrics.Handler(),
		handler.NewRequestMiddleware(container.Metrics, logger).Middleware,
		cfg.GetCORSOrigins(),
	)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the default document so the viewer starts with a session.
	snap := container.ViewerService.Load(ctx, nil)
	logger.Info("Opened initial document", "locator", snap.Locator.String(), "highlights", len(snap.Highlights))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", err)
	}
	if err := container.Close(); err != nil {
		logger.Error("Failed to release viewer", err)
	}
	logger.Info("Server exited")
}
