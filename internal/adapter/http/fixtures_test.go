package http

import (
	"time"

	"github.com/shopspring/decimal"

	"microlend/internal/domain/loan"
)

func activeLoan(id string) loan.Loan {
	due := time.Now().UTC().Add(20 * 24 * time.Hour)
	return loan.Loan{
		ID:               id,
		LoanNumber:       "LN-20260101-" + id,
		LoanOfferID:      "off-" + id,
		BorrowerID:       "b1",
		LenderID:         "l1",
		Amount:           decimal.NewFromInt(1000),
		InterestRate:     6,
		DurationDays:     30,
		TotalAmount:      decimal.NewFromInt(1060),
		AmountDue:        decimal.NewFromInt(1060),
		Status:           loan.StatusActive,
		SignedByBorrower: true,
		SignedByLender:   true,
		DueDate:          &due,
	}
}
