// Command arena runs the chess arena as a standalone websocket server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chessarena/internal/config"
	"chessarena/internal/logging"
	"chessarena/internal/ports/ws"
	"chessarena/internal/protocol"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "arena: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	logger, err := logging.New(envOr("ARENA_LOG_LEVEL", "info"), os.Getenv("ARENA_DEV") == "true")
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.LoadGameConfig(os.Getenv("ARENA_CONFIG")); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.GetGameConfig()
	if err := cfg.ApplyEnv(environ()); err != nil {
		return fmt.Errorf("apply env: %w", err)
	}

	codec, err := protocol.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}
	issuer, err := ws.NewTokenIssuer(os.Getenv("ARENA_TOKEN_SECRET"), "chess-arena", 0)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	room := ws.NewRoom(cfg, codec, logger.WithField("component", "room"), nil)
	go room.Run(ctx)

	srv := &http.Server{
		Addr:              envOr("ARENA_ADDR", ":8080"),
		Handler:           ws.NewHandler(room, issuer, codec, logger.WithField("component", "ws")).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s (codec=%s, max_players=%d)", srv.Addr, codec.Name(), cfg.MaxPlayers)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
