package id

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 lowercase hex characters (a v4 UUID without hyphens).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewLoanNumber returns a display identifier like LN-20260919-3FA91C.
func NewLoanNumber(at time.Time) string {
	return "LN-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(NewID32()[:6])
}
