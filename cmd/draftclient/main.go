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

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/config"
	"github.com/DoyleJ11/wuwa-draft-client/internal/httpapi"
	"github.com/DoyleJ11/wuwa-draft-client/internal/hub"
	"github.com/DoyleJ11/wuwa-draft-client/internal/logging"
	"github.com/DoyleJ11/wuwa-draft-client/internal/metrics"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/session"
	"github.com/DoyleJ11/wuwa-draft-client/internal/store"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/internal/transport"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "draftclient:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) (err error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cat, warning := catalog.LoadOrSentinel(ctx, cfg.CatalogSource,
		catalog.WithTimeout(cfg.CatalogTimeout),
		catalog.WithLogger(log.Named("catalog")),
	)
	log.Info("catalog loaded", zap.Int("items", cat.Len()), zap.Bool("fallback", warning != ""))

	kv, err := store.Open(ctx, cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { err = multierr.Append(err, kv.Close()) }()

	m := metrics.NewManager()
	g, gctx := errgroup.WithContext(ctx)

	h := hub.NewHub(gctx, log.Named("hub"))
	dial := func(sink transport.Sink) session.Channel {
		return transport.New(cfg.ServiceURL, sink,
			transport.WithDialTimeout(cfg.DialTimeout),
			transport.WithWriteTimeout(cfg.WriteTimeout),
			transport.WithKeepalive(cfg.KeepaliveInterval),
			transport.WithLogger(log.Named("transport")),
		)
	}
	sess := session.New(gctx, dial, cat, h,
		session.WithLogger(log.Named("session")),
		session.WithMetrics(m),
		session.WithLedger(scoring.NewLedger(kv, cat, log.Named("scoring"))),
		session.WithActionTimeout(cfg.ActionTimeout),
		session.WithBanSlots(cfg.BanSlots),
		session.WithWarning(warning),
		session.WithTimerOptions(
			timer.WithInterval(cfg.TickInterval),
			timer.WithLowThreshold(cfg.LowTimeThreshold),
		),
	)
	if err := sess.Do(ctx, session.Action{Kind: session.KindConnect}); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Session: sess,
			Hub:     h,
			Metrics: m,
			Log:     log.Named("http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("service", cfg.ServiceURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	<-sess.Done()
	<-h.Done()
	log.Info("stopped")
	return err
}
