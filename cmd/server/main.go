package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tidewear/internal/app"
	"tidewear/internal/cart"
	"tidewear/internal/config"
	"tidewear/internal/events"
	"tidewear/internal/payments"
	"tidewear/internal/ratelimit"
	"tidewear/internal/server"
	"tidewear/internal/session"
	"tidewear/internal/store"
	"tidewear/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	var dataStore store.Store
	if cfg.Storage == "postgres" {
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init postgres store: %v", err)
		}
		defer gormStore.Close()
		dataStore = gormStore
	} else {
		dataStore = store.NewMemoryStore()
	}
	if cfg.SeedDemo {
		if err := store.Seed(dataStore); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		slog.Info("demo data seeded")
	}

	var sessions session.Store
	var carts cart.Store
	if cfg.RedisAddr != "" {
		redisSessions := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTLOrDefault())
		defer redisSessions.Close()
		sessions = redisSessions

		redisCarts := cart.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.CartTTLOrDefault())
		defer redisCarts.Close()
		carts = redisCarts
	} else {
		sessions = session.NewJWTStore(cfg.SessionSecret, cfg.SessionTTLOrDefault())
		carts = cart.NewMemoryStore()
	}

	var gateway payments.Gateway
	if cfg.PaymentGatewayURL != "" {
		gateway = payments.NewClient(cfg.PaymentGatewayURL, cfg.PaymentAPIKey)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("failed to connect to broker: %v", err)
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()

	var authLimiter *ratelimit.FixedWindowLimiter
	if cfg.AuthRatePerMinute > 0 {
		if cfg.RedisAddr != "" {
			authLimiter, err = ratelimit.NewRedisFixedWindowLimiter(
				cfg.RedisAddr, cfg.RedisPassword, "tidewear:ratelimit:auth",
				cfg.AuthRatePerMinute, time.Minute)
		} else {
			authLimiter, err = ratelimit.NewMemoryFixedWindowLimiter(cfg.AuthRatePerMinute, time.Minute)
		}
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	appCore := app.New(dataStore, sessions, carts, gateway, publisher)
	httpServer := server.New(server.Config{
		App:          appCore,
		AdminToken:   cfg.AdminToken,
		CORSOrigins:  cfg.CORSOrigins,
		AuthLimiter:  authLimiter,
		SecureCookie: cfg.SecureCookies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
}
