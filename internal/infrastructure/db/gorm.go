package db

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"microlend/internal/domain/document"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/user"
)

// OpenGorm connects to MySQL. verbose enables SQL logging.
func OpenGorm(dsn string, verbose bool) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), verbose)
}

// OpenGormWithDialector configures the pool and pings once before returning.
func OpenGormWithDialector(dial gorm.Dialector, verbose ...bool) (*gorm.DB, error) {
	level := logger.Warn
	if len(verbose) > 0 && verbose[0] {
		level = logger.Info
	}
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		DisableAutomaticPing: true,
		NowFunc:              func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&document.Document{},
		&loanrequest.Request{},
		&offer.Offer{},
		&loan.Loan{},
		&trust.History{},
		&notification.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
