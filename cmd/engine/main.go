package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"evolve-engine/internal/config"
	"evolve-engine/internal/consult"
	"evolve-engine/internal/estimate"
	"evolve-engine/internal/httpapi"
	"evolve-engine/internal/secrets"
	"evolve-engine/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer(secrets.Getenv)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, v := config.NormalizeServer(cfg)
	for _, w := range v.Warnings {
		logger.Warn(w)
	}
	if err := v.Err(); err != nil {
		return err
	}

	pricing, err := estimate.LoadPricing(cfg.PricingPath)
	if err != nil {
		return err
	}

	var db *store.DB
	if cfg.Backend == config.BackendStore {
		dbPath := filepath.Join(cfg.DataDir, store.DBFileName)
		db, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", dbPath, err)
		}
		defer db.Close()
	}

	intake, err := consult.New(cfg, db, logger)
	if err != nil {
		return err
	}

	token := cfg.ShutdownToken
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return err
		}
	}

	mux := httpapi.NewMux(httpapi.Deps{Intake: intake, Pricing: pricing, Log: logger})
	srv := &http.Server{
		Handler:           httpapi.Handler(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv, logger))
	if db != nil {
		mux.HandleFunc("/api/consultations", consultationsHandler(token, db.Pool, logger))
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	logger.Info("engine listening",
		zap.String("addr", "http://"+cfg.Addr),
		zap.String("backend", string(cfg.Backend)),
	)
	logger.Debug("shutdown token", zap.String("token", token))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Serve also returns after POST /shutdown; release the waiter below.
		defer stop()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	logger.Info("engine stopped")
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}
