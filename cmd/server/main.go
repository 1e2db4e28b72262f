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

	"github.com/kjannette/fxjournal/internal/api"
	"github.com/kjannette/fxjournal/internal/cache"
	"github.com/kjannette/fxjournal/internal/config"
	"github.com/kjannette/fxjournal/internal/db"
	"github.com/kjannette/fxjournal/internal/journal"
	"github.com/kjannette/fxjournal/internal/logger"
	"github.com/kjannette/fxjournal/internal/notifications"
	"github.com/kjannette/fxjournal/internal/repository"
	"github.com/kjannette/fxjournal/internal/risk"
	"github.com/kjannette/fxjournal/internal/scheduler"
	"github.com/sirupsen/logrus"
)

const banner = `
╔══════════════════════════════════════╗
║         FX Trade Journal v0.3        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Component("main")

	// Database
	log.Infof("connecting to %s:%d/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer func() {
		pool.Close()
		log.Info("database pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		log.WithError(err).Fatal("database test query failed")
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, pool)
	cancelMigrate()
	if err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	// Repos
	tradeRepo := repository.NewTradeRepo(pool, cfg.TradingDayOffsetSeconds)
	labelRepo := repository.NewLabelRepo(pool)

	// Cache (optional)
	var dailyCache journal.DailyCache
	var cachePinger api.Pinger
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.New(ctx, cache.ClientConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			MaxRetries: 2,
		})
		cancel()
		if err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache")
		} else {
			defer rc.Close()
			dailyCache = cache.NewDailyCache(rc, time.Duration(cfg.CacheTTLSeconds)*time.Second)
			cachePinger = rc
			log.Infof("daily cache enabled at %s", cfg.RedisAddr)
		}
	}

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	svc := journal.New(tradeRepo, labelRepo, journal.Options{
		DayOffset: cfg.TradingDayOffsetSeconds,
		Cache:     dailyCache,
		Notifier:  notify,
		Histograms: journal.HistogramDefaults{
			BinCurrency: cfg.HistogramBinYen,
			CapCurrency: cfg.HistogramCapYen,
			BinPips:     cfg.HistogramBinPips,
			CapPips:     cfg.HistogramCapPips,
		},
	})

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(svc, api.Options{
		Port:       cfg.APIPort,
		APIKey:     cfg.APIKey,
		CORSOrigin: cfg.CORSAllowOrigin,
		DB:         pool,
		Cache:      cachePinger,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("api server error")
		}
	}()

	// 2. Daily digest
	var digest *scheduler.DigestScheduler
	if notify.Enabled() {
		guardian := risk.NewGuardian(risk.Limits{
			MaxDailyTrades:  cfg.AlertMaxDailyTrades,
			DailyLossLimit:  cfg.AlertDailyLossLimit,
			DailyProfitGoal: cfg.AlertDailyProfitGoal,
			MaxLosingStreak: cfg.AlertMaxLosingStreak,
		})
		digest = scheduler.NewDigestScheduler(svc, notify, scheduler.DigestSchedulerConfig{
			Interval:  time.Duration(cfg.DigestIntervalMinutes) * time.Minute,
			DayOffset: cfg.TradingDayOffsetSeconds,
			Guardian:  guardian,
		})
		digest.Start()
	} else {
		log.Info("digest scheduler skipped, no webhook configured")
	}

	log.Info("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutting down gracefully")

	if digest != nil {
		digest.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("api shutdown error")
	}
	svc.Wait()
	logrus.Info("shutdown complete")
}
