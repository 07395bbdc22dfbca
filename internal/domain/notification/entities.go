package notification

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeLoanOffer         Type = "LOAN_OFFER"
	TypeLoanApproved      Type = "LOAN_APPROVED"
	TypeLoanDisbursed     Type = "LOAN_DISBURSED"
	TypeRepaymentReminder Type = "REPAYMENT_REMINDER"
	TypeRepaymentReceived Type = "REPAYMENT_RECEIVED"
	TypeLoanOverdue       Type = "LOAN_OVERDUE"
	TypeLoanDefaulted     Type = "LOAN_DEFAULTED"
	TypeLoanCancelled     Type = "LOAN_CANCELLED"
	TypeTrustScore        Type = "TRUST_SCORE"
)

type Notification struct {
	ID        string          `gorm:"primaryKey;size:32"`
	UserID    string          `gorm:"size:32;not null;index:idx_notifications_user_read"`
	Type      Type            `gorm:"size:32;not null"`
	Title     string          `gorm:"size:255;not null"`
	Message   string          `gorm:"type:text;not null"`
	Data      json.RawMessage `gorm:"type:json"`
	IsRead    bool            `gorm:"not null;default:false;index:idx_notifications_user_read"`
	ReadAt    *time.Time
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }

// Message is what lifecycle code hands to a Sink.
type Message struct {
	UserID string
	Type   Type
	Title  string
	Body   string
	Data   map[string]any
}

// Sink accepts notifications fire-and-forget. Notify never returns an error;
// delivery failures are the sink's concern.
type Sink interface {
	Notify(ctx context.Context, msg Message)
}
