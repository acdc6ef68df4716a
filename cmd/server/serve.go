package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fastshift/internal/config"
	"github.com/iliyamo/fastshift/internal/handler"
	"github.com/iliyamo/fastshift/internal/identity"
	"github.com/iliyamo/fastshift/internal/logger"
	"github.com/iliyamo/fastshift/internal/middleware"
	"github.com/iliyamo/fastshift/internal/payment"
	"github.com/iliyamo/fastshift/internal/queue"
	"github.com/iliyamo/fastshift/internal/router"
	"github.com/iliyamo/fastshift/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			// events are best-effort; the API runs without them
			log.Warn("lifecycle events disabled", zap.Error(err))
		} else {
			defer func() { _ = pub.Close() }()
			events = pub
		}
	}

	svc := service.New(service.Deps{
		Store:   st,
		Gateway: payment.NewStripeGateway(cfg.PaymentGatewayKey, cfg.PaymentCurrency),
		Events:  events,
		Log:     log,
		Atomic:  cfg.AtomicWrites,
	})

	rl := config.LoadRateLimitConfig()
	var limiter echo.MiddlewareFunc
	if rl.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			defer func() { _ = rdb.Close() }()
			limiter = middleware.NewTokenBucket(rl, rdb)
		} else {
			log.Warn("rate limiting disabled: redis unreachable")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	router.Register(e, router.Deps{Services: svc, Verifier: verifier, Limiter: limiter})

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver), zap.Bool("atomic_writes", cfg.AtomicWrites))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newVerifier(cfg config.Config) (*identity.Verifier, error) {
	icfg := identity.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   30 * time.Second,
	}
	if cfg.JWTPublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key: %w", err)
		}
		icfg.PublicKeyPEM = pem
	}
	return identity.NewVerifier(icfg)
}
