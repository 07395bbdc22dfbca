package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"microlend/internal/adapter/middleware"
	"microlend/internal/usecase/funding"
	"microlend/internal/usecase/lifecycle"
	"microlend/internal/usecase/notification"
	"microlend/internal/usecase/trustscore"
)

type Deps struct {
	Funding       *funding.Usecase
	Loans         *lifecycle.Usecase
	Trust         *trustscore.Usecase
	Notifications *notification.Usecase
	Jobs          JobRunner

	Tokens         *middleware.Tokens
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Log            logrus.FieldLogger
	Checks         map[string]Check
}

// NewRouter wires every route. Mutating routes pass through Idempotency,
// which only inspects non-GET methods.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(echomw.Recover(), requestLogger(d.Log))

	e.GET("/health", NewHandler(d.Checks).Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	fh := NewFundingHandler(d.Funding, d.Log)
	lh := NewLoanHandler(d.Loans, d.Log)
	th := NewTrustHandler(d.Trust, d.Loans, d.Log)
	nh := NewNotificationHandler(d.Notifications, d.Log)

	api := e.Group("/api/v1", middleware.Auth(d.Tokens), middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Log))

	api.POST("/requests", fh.CreateRequest)
	api.GET("/requests", fh.ListOpenRequests)
	api.GET("/requests/mine", fh.ListMyRequests)
	api.GET("/requests/:id", fh.GetRequest)
	api.POST("/requests/:id/cancel", fh.CancelRequest)
	api.GET("/requests/:id/offers", fh.ListOffers)
	api.POST("/requests/:id/offers", fh.CreateOffer)

	api.POST("/offers/:id/accept", fh.AcceptOffer)
	api.POST("/offers/:id/reject", fh.RejectOffer)
	api.POST("/offers/:id/withdraw", fh.WithdrawOffer)

	api.GET("/loans", lh.ListMine)
	api.GET("/loans/:id", lh.GetLoan)
	api.POST("/loans/:id/sign", lh.Sign)
	api.POST("/loans/:id/mark-paid", lh.MarkPaid)
	api.POST("/loans/:id/confirm-payment", lh.ConfirmPayment)
	api.GET("/loans/:id/trust-history", th.LoanHistory)

	api.GET("/trust/me", th.MyTimeline)
	api.GET("/trust/users/:id", th.UserTimeline)

	api.GET("/notifications", nh.List)
	api.GET("/notifications/unread", nh.Unread)
	api.POST("/notifications/read-all", nh.MarkAllRead)
	api.POST("/notifications/:id/read", nh.MarkRead)
	api.DELETE("/notifications/:id", nh.Delete)

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.PATCH("/loans/:id/status", lh.UpdateStatus)
	admin.POST("/loans/:id/default", lh.Default)
	admin.POST("/loans/:id/cancel", lh.Cancel)
	admin.POST("/loans/:id/overdue", lh.FlagOverdue)
	if d.Jobs != nil {
		jh := NewJobHandler(d.Jobs, d.Log)
		admin.GET("/jobs", jh.List)
		admin.POST("/jobs/:name/run", jh.Run)
	}
	return e
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"user_id":    middleware.CallerID(c),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
