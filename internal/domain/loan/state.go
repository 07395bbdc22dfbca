package loan

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusActive           Status = "ACTIVE"
	StatusPaymentInitiated Status = "PAYMENT_INITIATED"
	StatusRepaid           Status = "REPAID"
	StatusOverdue          Status = "OVERDUE"
	StatusDefaulted        Status = "DEFAULTED"
	StatusCancelled        Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusPending, StatusActive, StatusPaymentInitiated, StatusRepaid,
	StatusOverdue, StatusDefaulted, StatusCancelled,
}

// ParseStatus accepts only the closed set of loan statuses (case-insensitive).
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range allStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown loan status %q", raw)
}

func (s Status) Terminal() bool {
	return s == StatusRepaid || s == StatusDefaulted || s == StatusCancelled
}

// transitions lists every allowed edge of the lifecycle.
var transitions = map[Status][]Status{
	StatusPending:          {StatusActive, StatusCancelled},
	StatusActive:           {StatusPaymentInitiated, StatusOverdue, StatusDefaulted, StatusCancelled},
	StatusOverdue:          {StatusPaymentInitiated, StatusDefaulted},
	StatusPaymentInitiated: {StatusRepaid, StatusDefaulted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const day = 24 * time.Hour

// DaysLate is floor((now - due) / 1 day); negative when now is before due.
func DaysLate(now, due time.Time) int {
	return int(math.Floor(float64(now.Sub(due)) / float64(day)))
}

// LateDaysAt returns max(floor, DaysLate(now, dueDate)), or floor when the
// loan has no due date yet.
func (l *Loan) LateDaysAt(now time.Time, floor int) int {
	if l.DueDate == nil {
		return floor
	}
	if d := DaysLate(now, *l.DueDate); d > floor {
		return d
	}
	return floor
}
