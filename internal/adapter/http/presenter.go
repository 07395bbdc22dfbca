package http

import (
	"encoding/json"
	"time"

	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/usecase/scheduler"
	"microlend/internal/usecase/trustscore"
	"microlend/pkg/money"
)

// All amounts leave the API through money.ToNumber, never as decimal strings.

type LoanView struct {
	ID                   string     `json:"id"`
	LoanNumber           string     `json:"loanNumber"`
	LoanRequestID        string     `json:"loanRequestId"`
	LoanOfferID          string     `json:"loanOfferId"`
	BorrowerID           string     `json:"borrowerId"`
	LenderID             string     `json:"lenderId"`
	Amount               float64    `json:"amount"`
	InterestRate         float64    `json:"interestRate"`
	DurationDays         int        `json:"durationDays"`
	TotalAmount          float64    `json:"totalAmount"`
	AmountPaid           float64    `json:"amountPaid"`
	AmountDue            float64    `json:"amountDue"`
	Status               string     `json:"status"`
	SignedByBorrower     bool       `json:"signedByBorrower"`
	SignedByLender       bool       `json:"signedByLender"`
	DisbursedAt          *time.Time `json:"disbursedAt,omitempty"`
	DueDate              *time.Time `json:"dueDate,omitempty"`
	RepaidAt             *time.Time `json:"repaidAt,omitempty"`
	IsLate               bool       `json:"isLate"`
	LateDays             int        `json:"lateDays"`
	PenaltyAmount        float64    `json:"penaltyAmount"`
	PaymentProofDocument string     `json:"paymentProofDocument,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func presentLoan(l *loan.Loan) LoanView {
	return LoanView{
		ID:                   l.ID,
		LoanNumber:           l.LoanNumber,
		LoanRequestID:        l.LoanRequestID,
		LoanOfferID:          l.LoanOfferID,
		BorrowerID:           l.BorrowerID,
		LenderID:             l.LenderID,
		Amount:               money.ToNumber(l.Amount),
		InterestRate:         l.InterestRate,
		DurationDays:         l.DurationDays,
		TotalAmount:          money.ToNumber(l.TotalAmount),
		AmountPaid:           money.ToNumber(l.AmountPaid),
		AmountDue:            money.ToNumber(l.AmountDue),
		Status:               string(l.Status),
		SignedByBorrower:     l.SignedByBorrower,
		SignedByLender:       l.SignedByLender,
		DisbursedAt:          l.DisbursedAt,
		DueDate:              l.DueDate,
		RepaidAt:             l.RepaidAt,
		IsLate:               l.IsLate,
		LateDays:             l.LateDays,
		PenaltyAmount:        money.ToNumber(l.PenaltyAmount),
		PaymentProofDocument: l.PaymentProofDocument,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

func presentLoans(ls []loan.Loan) []LoanView {
	out := make([]LoanView, 0, len(ls))
	for i := range ls {
		out = append(out, presentLoan(&ls[i]))
	}
	return out
}

type RequestView struct {
	ID              string     `json:"id"`
	BorrowerID      string     `json:"borrowerId"`
	Amount          float64    `json:"amount"`
	MinAmount       *float64   `json:"minAmount,omitempty"`
	InterestRate    float64    `json:"interestRate"`
	DurationDays    int        `json:"durationDays"`
	Purpose         string     `json:"purpose,omitempty"`
	AmountFunded    float64    `json:"amountFunded"`
	AmountNeeded    float64    `json:"amountNeeded"`
	Status          string     `json:"status"`
	FundingDeadline *time.Time `json:"fundingDeadline,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func presentRequest(r *loanrequest.Request) RequestView {
	return RequestView{
		ID:              r.ID,
		BorrowerID:      r.BorrowerID,
		Amount:          money.ToNumber(r.Amount),
		MinAmount:       money.NullToNumber(r.MinAmount),
		InterestRate:    r.InterestRate,
		DurationDays:    r.DurationDays,
		Purpose:         r.Purpose,
		AmountFunded:    money.ToNumber(r.AmountFunded),
		AmountNeeded:    money.ToNumber(r.AmountNeeded),
		Status:          string(r.Status),
		FundingDeadline: r.FundingDeadline,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
	}
}

func presentRequests(rs []loanrequest.Request) []RequestView {
	out := make([]RequestView, 0, len(rs))
	for i := range rs {
		out = append(out, presentRequest(&rs[i]))
	}
	return out
}

type OfferView struct {
	ID             string    `json:"id"`
	LoanRequestID  string    `json:"loanRequestId"`
	LenderID       string    `json:"lenderId"`
	Amount         float64   `json:"amount"`
	InterestRate   float64   `json:"interestRate"`
	Status         string    `json:"status"`
	IsCounterOffer bool      `json:"isCounterOffer"`
	Message        string    `json:"message,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func presentOffer(o *offer.Offer) OfferView {
	return OfferView{
		ID:             o.ID,
		LoanRequestID:  o.LoanRequestID,
		LenderID:       o.LenderID,
		Amount:         money.ToNumber(o.Amount),
		InterestRate:   o.InterestRate,
		Status:         string(o.Status),
		IsCounterOffer: o.IsCounterOffer,
		Message:        o.Message,
		CreatedAt:      o.CreatedAt,
	}
}

func presentOffers(list []offer.Offer) []OfferView {
	out := make([]OfferView, 0, len(list))
	for i := range list {
		out = append(out, presentOffer(&list[i]))
	}
	return out
}

type HistoryView struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	LoanID    *string         `json:"loanId,omitempty"`
	OldScore  int             `json:"oldScore"`
	NewScore  int             `json:"newScore"`
	Change    int             `json:"change"`
	Reason    string          `json:"reason"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func presentHistory(hs []trust.History) []HistoryView {
	out := make([]HistoryView, 0, len(hs))
	for _, h := range hs {
		out = append(out, HistoryView{
			ID:        h.ID,
			UserID:    h.UserID,
			LoanID:    h.LoanID,
			OldScore:  h.OldScore,
			NewScore:  h.NewScore,
			Change:    h.Change,
			Reason:    string(h.Reason),
			Metadata:  h.Metadata,
			CreatedAt: h.CreatedAt,
		})
	}
	return out
}

type TimelineView struct {
	UserID   string        `json:"userId"`
	Score    int           `json:"trustScore"`
	Category string        `json:"category"`
	History  []HistoryView `json:"history"`
}

func presentTimeline(t *trustscore.Timeline) TimelineView {
	return TimelineView{
		UserID:   t.UserID,
		Score:    t.Score,
		Category: string(t.Category),
		History:  presentHistory(t.History),
	}
}

type NotificationView struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"isRead"`
	ReadAt    *time.Time      `json:"readAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func presentNotifications(ns []notification.Notification) []NotificationView {
	out := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Data:      n.Data,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

type JobResultView struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped"`
}

func presentJobResult(name string, r scheduler.Result) JobResultView {
	return JobResultView{Job: name, Processed: r.Processed, Failed: r.Failed, Skipped: r.Skipped}
}
