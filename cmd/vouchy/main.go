package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quikeats/Vouchy/internal/adapter/discord"
	"github.com/quikeats/Vouchy/internal/adapter/filestore"
	"github.com/quikeats/Vouchy/internal/adapter/httpserver"
	"github.com/quikeats/Vouchy/internal/adapter/redisstore"
	"github.com/quikeats/Vouchy/internal/adapter/sqlitestore"
	"github.com/quikeats/Vouchy/internal/adapter/websocket"
	"github.com/quikeats/Vouchy/internal/app"
	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/ledger"
	"github.com/quikeats/Vouchy/internal/metrics"
	"github.com/quikeats/Vouchy/internal/platform/config"
	"github.com/quikeats/Vouchy/internal/platform/logging"
	"github.com/quikeats/Vouchy/internal/platform/version"
)

const gatewayConnectTimeout = 2 * time.Minute

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	cfg := setupConfig()

	// Initialize structured logging
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	store := setupStore(cfg)
	defer func() { _ = store.Close() }()

	clock := clockwork.NewRealClock()
	engine := ledger.New(context.Background(), store, clock, cfg.PersistRetryInterval)

	hub := websocket.NewHub(cfg.MaxWebSocketConnections)
	engine.SetOnChange(func(entries []domain.Entry) {
		hub.Broadcast(domain.Rank(entries))
	})
	engine.Start()

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		os.Exit(1)
	}

	svc := app.NewService(engine, discord.NewReplier(session), discord.NewNameResolver(session),
		cfg.VouchChannelID, cfg.CommandPrefix, int64(cfg.PointsPerImage))
	gateway := discord.NewGateway(session, svc)

	connectGateway(gateway)

	healthChecks := []httpserver.HealthCheck{
		{Name: "store", Check: func(ctx context.Context) error {
			_, err := store.Load(ctx)
			return err
		}},
		{Name: "gateway", Check: func(context.Context) error {
			if !gateway.Connected() {
				return errors.New("gateway not connected")
			}
			return nil
		}},
	}

	srv := httpserver.NewServer(cfg, engine, hub, healthChecks)

	done := runGracefulShutdown(srv, gateway, engine, hub)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) domain.LedgerStore {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open ledger store", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	slog.Info("Ledger store opened", "backend", cfg.StorageBackend)
	return store
}

func openStore(ctx context.Context, cfg *config.Config) (domain.LedgerStore, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return filestore.New(cfg.LedgerPath), nil
	case config.BackendSQLite:
		return sqlitestore.New(cfg.SQLitePath)
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return redisstore.New(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, cfg.StorageBackend)
	}
}

func connectGateway(gateway *discord.Gateway) {
	ctx, cancel := context.WithTimeout(context.Background(), gatewayConnectTimeout)
	defer cancel()

	if err := gateway.Open(ctx); err != nil {
		slog.Error("Failed to connect to Discord gateway", "error", err)
		os.Exit(1)
	}
}

func runGracefulShutdown(srv *httpserver.Server, gateway *discord.Gateway, engine *ledger.Engine, hub *websocket.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if err := gateway.Close(); err != nil {
			slog.Error("Gateway close error", "error", err)
		}

		// Stop blocks until the final flush lands, so the store must still
		// be open here.
		engine.Stop()
		hub.Stop()

		close(done)
	}()

	return done
}
