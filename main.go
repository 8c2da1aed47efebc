package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	server := &http.Server{
		Addr: "127.0.0.1:8081",
	}
	stopTimeout := 10 * time.Second

	flag.StringVar(&server.Addr, "addr", server.Addr, "http service address")
	flag.DurationVar(&stopTimeout, "stop-timeout", stopTimeout, "stop timeout")
	origin := flag.String("origin", "", "websocket server checks Origin headers against this scheme://host[:port]")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	reported := make(chan struct{})
	go func() {
		metrics.run(ctx)
		close(reported)
	}()
	defer func() {
		stop()
		<-reported
	}()

	h := newHub(ctx, newJWTVerifier(cfg.JWTSecret), newGateway(cfg.gateway(), log), log)
	defer h.stop()
	server.Handler = newHandler(h, *origin)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr, "provider", cfg.LLMProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// Hijacked websockets are not tracked by Shutdown.
	h.stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped cleanly")
	return nil
}

func newHandler(h *hub, origin string) http.Handler {
	handler := mux.NewRouter()
	upgrader := newUpgrader(origin)

	// Route websocket requests
	ws := handler.PathPrefix("/api/ws").HeadersRegexp("Upgrade", "(?i)^websocket$").Subrouter()
	ws.Handle("/chat", wsHandler{h: h, ch: h.channels[chatChannel], upgrader: upgrader})
	ws.Handle("/ai-chat", wsHandler{h: h, ch: h.channels[aiChatChannel], upgrader: upgrader})

	// Route other GET and POST requests
	api := handler.PathPrefix("/api").Subrouter()
	api.Methods(http.MethodGet).Path("/health").Handler(healthHandler{h: h})
	api.Methods(http.MethodGet).Path("/metrics").Handler(metrics)
	api.Methods(http.MethodPost).Path("/chat/{channel}/messages").Handler(announceHandler{h: h})

	return handler
}

