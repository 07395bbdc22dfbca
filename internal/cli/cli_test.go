package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"

	"microlend/internal/adapter/middleware"
	"microlend/internal/app"
	"microlend/internal/config"
	"microlend/internal/domain/errs"
	"microlend/internal/infrastructure/db"
)

func useTestApp(t *testing.T) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	prev := opener
	t.Cleanup(func() { opener = prev })
	opener = func() (*app.App, error) {
		gdb, err := db.OpenGormWithDialector(sqlite.Open(":memory:"))
		if err != nil {
			return nil, err
		}
		sqlDB, _ := gdb.DB()
		sqlDB.SetMaxOpenConns(1)
		if err := db.Migrate(gdb); err != nil {
			return nil, err
		}
		logger, _ := test.NewNullLogger()
		cfg := &config.Config{JWTSecret: "s3cret", JWTIssuer: "microlend", SchedulerTZ: "UTC", IdempTTLSecs: 60}
		return app.New(cfg, logger, gdb, redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrateAndJobs(t *testing.T) {
	useTestApp(t)

	out, err := run(t, "migrate")
	if err != nil || out != "schema up to date\n" {
		t.Fatalf("migrate = %q, %v", out, err)
	}

	out, err = run(t, "jobs", "list")
	if err != nil || out != "expire\noverdue\nreminders\n" {
		t.Fatalf("jobs list = %q, %v", out, err)
	}

	out, err = run(t, "jobs", "run", "overdue")
	if err != nil || out != "overdue: processed=0 failed=0\n" {
		t.Fatalf("jobs run = %q, %v", out, err)
	}

	if _, err := run(t, "jobs", "run", "payroll"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown job err = %v", err)
	}
}

func TestLoansStatus_Errors(t *testing.T) {
	useTestApp(t)

	if _, err := run(t, "loans", "status", "missing", "DEFAULTED"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing loan err = %v", err)
	}
	if _, err := run(t, "loans", "status", "missing", "LOST"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad status err = %v", err)
	}
	if _, err := run(t, "loans", "status", "only-one-arg"); err == nil {
		t.Fatal("expected an args error")
	}
}

func TestToken(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ISSUER", "microlend")

	out, err := run(t, "token", "u1", "--role", "admin", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := middleware.NewTokens("microlend", "s3cret").Parse(strings.TrimSpace(out))
	if err != nil || claims.UserID != "u1" || claims.Role != middleware.RoleAdmin {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	if _, err := run(t, "token", "u1", "--role", "root"); err == nil {
		t.Fatal("unknown role should fail")
	}
}
