package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	domain "microlend/internal/domain/notification"
	"microlend/internal/domain/user"
	"microlend/internal/infrastructure/metrics"
	"microlend/pkg/id"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	mailTimeout  = 30 * time.Second
)

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Usecase stores notifications and optionally mirrors them by email. It is
// the notification.Sink handed to the lending usecases.
type Usecase struct {
	repo   domain.Repository
	users  user.Repository
	mailer Mailer
	log    logrus.FieldLogger
	wg     sync.WaitGroup
}

var _ domain.Sink = (*Usecase)(nil)

// NewUsecase: mailer may be nil to disable email.
func NewUsecase(repo domain.Repository, users user.Repository, mailer Mailer, log logrus.FieldLogger) *Usecase {
	return &Usecase{repo: repo, users: users, mailer: mailer, log: log}
}

// Notify never fails the caller. Storage errors are logged and counted.
func (u *Usecase) Notify(ctx context.Context, msg domain.Message) {
	log := u.log.WithFields(logrus.Fields{"user_id": msg.UserID, "type": msg.Type})

	var data json.RawMessage
	if len(msg.Data) > 0 {
		b, err := json.Marshal(msg.Data)
		if err != nil {
			log.WithError(err).Warn("notification payload dropped")
		} else {
			data = b
		}
	}

	n := &domain.Notification{
		ID:      id.NewID32(),
		UserID:  msg.UserID,
		Type:    msg.Type,
		Title:   msg.Title,
		Message: msg.Body,
		Data:    data,
	}
	if err := u.repo.Create(ctx, n); err != nil {
		metrics.NotificationsFailed.Inc()
		log.WithError(err).Error("store notification")
	}

	if u.mailer != nil {
		u.mail(ctx, msg, log)
	}
}

func (u *Usecase) mail(ctx context.Context, msg domain.Message, log logrus.FieldLogger) {
	usr, err := u.users.GetByID(ctx, msg.UserID)
	if err != nil || usr.Email == "" {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Warn("lookup recipient for email")
		}
		return
	}
	u.wg.Add(1)
	go func(to string) {
		defer u.wg.Done()
		mctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := u.mailer.Send(mctx, to, msg.Title, msg.Body); err != nil {
			metrics.NotificationsFailed.Inc()
			log.WithError(err).Warn("send notification email")
		}
	}(usr.Email)
}

// Wait blocks until in-flight emails finish.
func (u *Usecase) Wait() { u.wg.Wait() }

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func (u *Usecase) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return u.repo.ListByUser(ctx, userID, false, clampLimit(limit))
}

func (u *Usecase) Unread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return u.repo.ListByUser(ctx, userID, true, 0)
}

func (u *Usecase) MarkRead(ctx context.Context, notificationID, userID string) error {
	ok, err := u.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("notification")
	}
	return nil
}

func (u *Usecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return u.repo.MarkAllRead(ctx, userID)
}

func (u *Usecase) Delete(ctx context.Context, notificationID, userID string) error {
	ok, err := u.repo.SoftDelete(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("notification")
	}
	return nil
}
