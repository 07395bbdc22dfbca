package user

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Category is the eligibility tier derived from TrustScore.
type Category string

const (
	CategoryExcellent Category = "EXCELLENT"
	CategoryGood      Category = "GOOD"
	CategoryTrustable Category = "TRUSTABLE"
	CategoryModerate  Category = "MODERATE"
	CategoryRisky     Category = "RISKY"
	CategoryDefault   Category = "DEFAULT"
)

const InitialTrustScore = 50

type User struct {
	ID        string `gorm:"primaryKey;size:32"`
	Email     string `gorm:"size:191;uniqueIndex"`
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Status    Status `gorm:"size:16;default:'PENDING'"`

	// written only by the trust score engine
	TrustScore int      `gorm:"not null;default:50"`
	Category   Category `gorm:"size:16;default:'MODERATE'"`

	TotalBorrowed decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalLent     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalRepaid   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentDebt   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Counters is an increment applied to the financial aggregates.
type Counters struct {
	TotalBorrowed decimal.Decimal
	TotalLent     decimal.Decimal
	TotalRepaid   decimal.Decimal
	CurrentDebt   decimal.Decimal
}
