package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microlend/internal/app"
	"microlend/internal/config"
	"microlend/internal/infrastructure/db"
	"microlend/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text").WithError(err).Fatal("load config")
	}
	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	log := logging.New(cfg.LogLevel, format)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	a, err := app.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup")
	}
	defer a.Close()

	if err := db.Migrate(a.DB); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	if cfg.SchedulerEnabled {
		a.Scheduler.Start()
		log.WithField("tz", cfg.SchedulerTZ).Info("scheduler started")
	}

	e := a.Router()
	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if cfg.SchedulerEnabled {
		select {
		case <-a.Scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("scheduler jobs still running at exit")
		}
	}
}
