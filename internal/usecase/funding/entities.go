package funding

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateRequestInput struct {
	BorrowerID      string
	Amount          decimal.Decimal
	MinAmount       *decimal.Decimal
	InterestRate    *float64
	DurationDays    int
	Purpose         string
	ExpiresAt       *time.Time
	FundingDeadline *time.Time
}

type CreateOfferInput struct {
	RequestID      string
	LenderID       string
	Amount         decimal.Decimal
	InterestRate   *float64
	IsCounterOffer bool
	Message        string
}

// DocumentInput is a verification document submitted with an acceptance.
type DocumentInput struct {
	Type string
	URL  string
}

type AcceptOfferInput struct {
	OfferID    string
	BorrowerID string
	Documents  []DocumentInput
}

const maxDurationDays = 3650
