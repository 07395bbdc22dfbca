package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret string
	JWTIssuer string

	SchedulerEnabled bool
	SchedulerTZ      string
	ReminderSchedule string
	ExpirySchedule   string
	OverdueSchedule  string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// fileConfig is the optional TOML file named by CONFIG_FILE. Environment
// variables win over anything set here.
type fileConfig struct {
	App struct {
		Port     string `toml:"port"`
		Env      string `toml:"env"`
		LogLevel string `toml:"log_level"`
	} `toml:"app"`
	MySQL struct {
		Host string `toml:"host"`
		Port string `toml:"port"`
		DB   string `toml:"db"`
		User string `toml:"user"`
		Pass string `toml:"pass"`
	} `toml:"mysql"`
	Redis struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       *int   `toml:"db"`
	} `toml:"redis"`
	Idempotency struct {
		TTLSeconds int `toml:"ttl_seconds"`
	} `toml:"idempotency"`
	JWT struct {
		Secret string `toml:"secret"`
		Issuer string `toml:"issuer"`
	} `toml:"jwt"`
	Scheduler struct {
		Enabled  *bool  `toml:"enabled"`
		TZ       string `toml:"tz"`
		Reminder string `toml:"reminder"`
		Expiry   string `toml:"expiry"`
		Overdue  string `toml:"overdue"`
	} `toml:"scheduler"`
	SMTP struct {
		Host string `toml:"host"`
		Port string `toml:"port"`
		User string `toml:"user"`
		Pass string `toml:"pass"`
		From string `toml:"from"`
	} `toml:"smtp"`
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func or(v, d string) string {
	if v != "" {
		return v
	}
	return d
}

func Load() (*Config, error) {
	var f fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	c := &Config{
		AppPort:  getenv("APP_PORT", or(f.App.Port, "8080")),
		AppEnv:   getenv("APP_ENV", or(f.App.Env, "development")),
		LogLevel: getenv("LOG_LEVEL", or(f.App.LogLevel, "info")),

		MySQLHost: getenv("MYSQL_HOST", or(f.MySQL.Host, "mysql")),
		MySQLPort: getenv("MYSQL_PORT", or(f.MySQL.Port, "3306")),
		MySQLDB:   getenv("MYSQL_DB", or(f.MySQL.DB, "microlend")),
		MySQLUser: getenv("MYSQL_USER", or(f.MySQL.User, "microlend")),
		MySQLPass: getenv("MYSQL_PASS", or(f.MySQL.Pass, "microlend")),

		RedisAddr:    getenv("REDIS_ADDR", or(f.Redis.Addr, "redis:6379")),
		RedisPass:    getenv("REDIS_PASSWORD", f.Redis.Password),
		IdempTTLSecs: 300,

		JWTSecret: getenv("JWT_SECRET", f.JWT.Secret),
		JWTIssuer: getenv("JWT_ISSUER", or(f.JWT.Issuer, "microlend")),

		SchedulerEnabled: true,
		SchedulerTZ:      getenv("SCHEDULER_TZ", or(f.Scheduler.TZ, "Africa/Kigali")),
		ReminderSchedule: getenv("REMINDER_SCHEDULE", or(f.Scheduler.Reminder, "0 9 * * *")),
		ExpirySchedule:   getenv("EXPIRY_SCHEDULE", or(f.Scheduler.Expiry, "15 9 * * *")),
		OverdueSchedule:  getenv("OVERDUE_SCHEDULE", or(f.Scheduler.Overdue, "30 9 * * *")),

		SMTPHost: getenv("SMTP_HOST", f.SMTP.Host),
		SMTPPort: getenv("SMTP_PORT", or(f.SMTP.Port, "587")),
		SMTPUser: getenv("SMTP_USER", f.SMTP.User),
		SMTPPass: getenv("SMTP_PASS", f.SMTP.Pass),
		MailFrom: getenv("MAIL_FROM", or(f.SMTP.From, "no-reply@microlend.local")),
	}

	if f.Redis.DB != nil {
		c.RedisDB = *f.Redis.DB
	}
	if f.Idempotency.TTLSeconds > 0 {
		c.IdempTTLSecs = f.Idempotency.TTLSeconds
	}
	if f.Scheduler.Enabled != nil {
		c.SchedulerEnabled = *f.Scheduler.Enabled
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SchedulerEnabled = b
		}
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if _, err := time.LoadLocation(c.SchedulerTZ); err != nil {
		return fmt.Errorf("invalid SCHEDULER_TZ %q: %w", c.SchedulerTZ, err)
	}
	for name, spec := range map[string]string{
		"REMINDER_SCHEDULE": c.ReminderSchedule,
		"EXPIRY_SCHEDULE":   c.ExpirySchedule,
		"OVERDUE_SCHEDULE":  c.OverdueSchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// MailEnabled is true when an SMTP host is configured.
func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps due dates comparable
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
