// Package app assembles the process: storage, usecases, scheduler and router.
// Both the API server and lendctl build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpadp "microlend/internal/adapter/http"
	"microlend/internal/adapter/middleware"
	"microlend/internal/adapter/notify/email"
	"microlend/internal/adapter/repository/mysql"
	"microlend/internal/config"
	"microlend/internal/infrastructure/cache"
	"microlend/internal/infrastructure/db"
	"microlend/internal/usecase/eligibility"
	"microlend/internal/usecase/funding"
	"microlend/internal/usecase/lifecycle"
	"microlend/internal/usecase/notification"
	"microlend/internal/usecase/scheduler"
	"microlend/internal/usecase/trustscore"
)

const jobLockPrefix = "microlend:jobs:"

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Tokens *middleware.Tokens

	Funding       *funding.Usecase
	Loans         *lifecycle.Usecase
	Trust         *trustscore.Usecase
	Notifications *notification.Usecase
	Scheduler     *scheduler.Scheduler
}

// Open connects to MySQL and Redis and wires every usecase. The scheduler
// has its jobs registered but is not started.
func Open(cfg *config.Config, log *logrus.Logger) (*App, error) {
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), !cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		closeDB(gdb)
		return nil, fmt.Errorf("open redis: %w", err)
	}
	a, err := New(cfg, log, gdb, rdb)
	if err != nil {
		closeDB(gdb)
		_ = rdb.Close()
		return nil, err
	}
	return a, nil
}

// New wires the usecases over already-open connections.
func New(cfg *config.Config, log *logrus.Logger, gdb *gorm.DB, rdb *redis.Client) (*App, error) {
	tx := mysql.NewGormUoW(gdb)
	repos := tx.Repos()

	// a nil *email.Mailer must not leak into the interface
	var mailer notification.Mailer
	if cfg.MailEnabled() {
		mailer = email.NewMailer(cfg, log)
	}
	notif := notification.NewUsecase(mysql.NewNotificationRepository(gdb), repos.Users, mailer, log)

	gate := eligibility.NewUsecase(repos.Users, repos.Documents)
	fund := funding.NewUsecase(tx, repos, gate, notif, log)
	loans := lifecycle.NewUsecase(tx, repos, notif, log)

	loc, err := time.LoadLocation(cfg.SchedulerTZ)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}
	sched := scheduler.New(loc, cache.NewLocker(rdb, jobLockPrefix), log)
	specs := scheduler.Specs{}
	if cfg.SchedulerEnabled {
		specs = scheduler.Specs{Reminders: cfg.ReminderSchedule, Expiry: cfg.ExpirySchedule, Overdue: cfg.OverdueSchedule}
	}
	if err := sched.RegisterDefaults(specs, loans, fund); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	return &App{
		Config:        cfg,
		Log:           log,
		DB:            gdb,
		Redis:         rdb,
		Tokens:        middleware.NewTokens(cfg.JWTIssuer, cfg.JWTSecret),
		Funding:       fund,
		Loans:         loans,
		Trust:         trustscore.NewUsecase(repos.Users, repos.Trust),
		Notifications: notif,
		Scheduler:     sched,
	}, nil
}

func (a *App) Router() *echo.Echo {
	return httpadp.NewRouter(httpadp.Deps{
		Funding:        a.Funding,
		Loans:          a.Loans,
		Trust:          a.Trust,
		Notifications:  a.Notifications,
		Jobs:           a.Scheduler,
		Tokens:         a.Tokens,
		Redis:          a.Redis,
		IdempotencyTTL: a.Config.IdempotencyTTL(),
		Log:            a.Log,
		Checks: map[string]httpadp.Check{
			"mysql": a.pingDB,
			"redis": cache.Ping(a.Redis),
		},
	})
}

func (a *App) pingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close waits for queued emails, then releases connections.
func (a *App) Close() {
	a.Notifications.Wait()
	if err := a.Redis.Close(); err != nil {
		a.Log.WithError(err).Warn("close redis")
	}
	closeDB(a.DB)
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
