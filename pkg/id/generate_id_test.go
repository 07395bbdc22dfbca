package id

import (
	"encoding/hex"
	"regexp"
	"testing"
	"time"
)

var (
	reHex32      = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reLoanNumber = regexp.MustCompile(`^LN-\d{8}-[A-F0-9]{6}$`)
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewLoanNumber_Format(t *testing.T) {
	at := time.Date(2026, 9, 19, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	got := NewLoanNumber(at)
	if !reLoanNumber.MatchString(got) {
		t.Fatalf("unexpected loan number format: %q", got)
	}
	// date part is UTC
	if got[3:11] != "20260919" {
		t.Fatalf("date part = %q, want 20260919", got[3:11])
	}
}
