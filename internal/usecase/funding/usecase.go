package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"microlend/internal/domain/document"
	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/uow"
	"microlend/internal/infrastructure/metrics"
	"microlend/pkg/id"
	"microlend/pkg/money"
)

// Gate decides whether a user may borrow or lend.
type Gate interface {
	CanBorrow(ctx context.Context, userID string) error
	CanLend(ctx context.Context, userID string) error
}

type Usecase struct {
	tx     uow.UnitOfWork
	repos  uow.Repos
	gate   Gate
	notify notification.Sink
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, gate Gate, sink notification.Sink, log logrus.FieldLogger) *Usecase {
	return &Usecase{tx: tx, repos: repos, gate: gate, notify: sink, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(what)
	}
	return err
}

func validRate(r *float64) bool { return r == nil || (*r >= 0 && *r <= 100) }

// ----- loan requests -----

func (u *Usecase) CreateRequest(ctx context.Context, in CreateRequestInput) (*loanrequest.Request, error) {
	now := u.now()
	switch {
	case !in.Amount.IsPositive():
		return nil, errs.Validation("amount must be positive")
	case in.DurationDays < 1 || in.DurationDays > maxDurationDays:
		return nil, errs.Validation(fmt.Sprintf("durationDays must be between 1 and %d", maxDurationDays))
	case in.MinAmount != nil && (!in.MinAmount.IsPositive() || in.MinAmount.GreaterThan(in.Amount)):
		return nil, errs.Validation("minAmount must be positive and not exceed amount")
	case !validRate(in.InterestRate):
		return nil, errs.Validation("interestRate must be between 0 and 100")
	case in.ExpiresAt != nil && !in.ExpiresAt.After(now):
		return nil, errs.Validation("expiresAt must be in the future")
	case in.FundingDeadline != nil && !in.FundingDeadline.After(now):
		return nil, errs.Validation("fundingDeadline must be in the future")
	}
	if err := u.gate.CanBorrow(ctx, in.BorrowerID); err != nil {
		return nil, err
	}

	r := &loanrequest.Request{
		ID:              id.NewID32(),
		BorrowerID:      in.BorrowerID,
		Amount:          in.Amount,
		InterestRate:    money.EffectiveRate(in.InterestRate),
		DurationDays:    in.DurationDays,
		Purpose:         strings.TrimSpace(in.Purpose),
		AmountFunded:    decimal.Zero,
		AmountNeeded:    in.Amount,
		Status:          loanrequest.StatusOpen,
		ExpiresAt:       in.ExpiresAt,
		FundingDeadline: in.FundingDeadline,
	}
	if in.MinAmount != nil {
		r.MinAmount = decimal.NewNullDecimal(*in.MinAmount)
	}
	if err := u.repos.Requests.Create(ctx, r); err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"request_id": r.ID, "user_id": r.BorrowerID}).Info("loan request created")
	return r, nil
}

func (u *Usecase) GetRequest(ctx context.Context, requestID string) (*loanrequest.Request, error) {
	r, err := u.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "loan request")
	}
	return r, nil
}

func (u *Usecase) ListOpenRequests(ctx context.Context, limit int) ([]loanrequest.Request, error) {
	return u.repos.Requests.ListOpen(ctx, limit)
}

func (u *Usecase) ListMyRequests(ctx context.Context, borrowerID string) ([]loanrequest.Request, error) {
	return u.repos.Requests.ListByBorrower(ctx, borrowerID)
}

func (u *Usecase) ListOffers(ctx context.Context, requestID string) ([]offer.Offer, error) {
	if _, err := u.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return u.repos.Offers.ListByRequest(ctx, requestID)
}

// CancelRequest closes an unfunded request and rejects its pending offers.
func (u *Usecase) CancelRequest(ctx context.Context, requestID, borrowerID string) (*loanrequest.Request, error) {
	var out *loanrequest.Request
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFound(err, "loan request")
		}
		if req.BorrowerID != borrowerID {
			return errs.Forbidden("only the request owner may cancel it")
		}
		if req.Status != loanrequest.StatusOpen && req.Status != loanrequest.StatusPartial {
			return errs.InvalidState("only open or partially funded requests can be cancelled")
		}
		req.Status = loanrequest.StatusCancelled
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		if _, err := r.Offers.RejectPending(ctx, req.ID); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireRequests moves open requests past their deadline to EXPIRED, each in
// its own transaction. Per-row failures are logged and counted.
func (u *Usecase) ExpireRequests(ctx context.Context) (expired, failed int, err error) {
	now := u.now()
	due, err := u.repos.Requests.ListExpirable(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	for _, cand := range due {
		changed := false
		err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
			req, err := r.Requests.GetByIDForUpdate(ctx, cand.ID)
			if err != nil {
				return err
			}
			if !req.OpenForFunding() {
				return nil
			}
			if d := req.Deadline(); d == nil || !d.Before(now) {
				return nil
			}
			req.Status = loanrequest.StatusExpired
			if err := r.Requests.Save(ctx, req); err != nil {
				return err
			}
			if _, err := r.Offers.RejectPending(ctx, req.ID); err != nil {
				return err
			}
			changed = true
			return nil
		})
		switch {
		case err != nil:
			failed++
			u.log.WithError(err).WithField("request_id", cand.ID).Error("expire loan request")
		case changed:
			expired++
		}
	}
	return expired, failed, nil
}

// ----- offers -----

func (u *Usecase) CreateOffer(ctx context.Context, in CreateOfferInput) (*offer.Offer, error) {
	if !in.Amount.IsPositive() {
		return nil, errs.Validation("amount must be positive")
	}
	if !validRate(in.InterestRate) {
		return nil, errs.Validation("interestRate must be between 0 and 100")
	}
	if err := u.gate.CanLend(ctx, in.LenderID); err != nil {
		return nil, err
	}

	var (
		out        *offer.Offer
		borrowerID string
	)
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByIDForUpdate(ctx, in.RequestID)
		if err != nil {
			return notFound(err, "loan request")
		}
		if req.BorrowerID == in.LenderID {
			return errs.Forbidden("you cannot make an offer on your own loan request")
		}
		if !req.OpenForFunding() {
			return errs.InvalidState("loan request is no longer open for funding")
		}
		if in.Amount.GreaterThan(req.AmountNeeded) {
			return errs.Validation("offer amount exceeds the amount still needed")
		}
		if req.MinAmount.Valid && in.Amount.LessThan(req.MinAmount.Decimal) {
			return errs.Validation("offer amount is below the request minimum")
		}
		dup, err := r.Offers.HasPending(ctx, req.ID, in.LenderID)
		if err != nil {
			return err
		}
		if dup {
			return errs.InvalidState("you already have a pending offer on this request")
		}

		o := &offer.Offer{
			ID:             id.NewID32(),
			LoanRequestID:  req.ID,
			LenderID:       in.LenderID,
			Amount:         in.Amount,
			InterestRate:   money.EffectiveRate(in.InterestRate, &req.InterestRate),
			Status:         offer.StatusPending,
			IsCounterOffer: in.IsCounterOffer,
			Message:        strings.TrimSpace(in.Message),
		}
		if err := r.Offers.Create(ctx, o); err != nil {
			return err
		}
		out, borrowerID = o, req.BorrowerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notify.Notify(ctx, notification.OfferCreated(borrowerID, u.displayName(ctx, out.LenderID, "A lender"), out.Amount, out.ID))
	return out, nil
}

func (u *Usecase) RejectOffer(ctx context.Context, offerID, borrowerID string) (*offer.Offer, error) {
	var out *offer.Offer
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFound(err, "loan offer")
		}
		req, err := r.Requests.GetByID(ctx, o.LoanRequestID)
		if err != nil {
			return notFound(err, "loan request")
		}
		if req.BorrowerID != borrowerID {
			return errs.Forbidden("only the request owner may reject offers")
		}
		if o.Status != offer.StatusPending {
			return errs.InvalidState("only pending offers can be rejected")
		}
		o.Status = offer.StatusRejected
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.notify.Notify(ctx, notification.OfferDeclined(out.LenderID, out.Amount, out.ID))
	return out, nil
}

func (u *Usecase) WithdrawOffer(ctx context.Context, offerID, lenderID string) (*offer.Offer, error) {
	var out *offer.Offer
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFound(err, "loan offer")
		}
		if o.LenderID != lenderID {
			return errs.Forbidden("only the lender may withdraw this offer")
		}
		if o.Status != offer.StatusPending {
			return errs.InvalidState("only pending offers can be withdrawn")
		}
		o.Status = offer.StatusWithdrawn
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptOffer turns a pending offer into a PENDING loan signed by the
// borrower and applies the offer amount to the request, all in one
// transaction. Remaining funding is re-checked under the request lock.
func (u *Usecase) AcceptOffer(ctx context.Context, in AcceptOfferInput) (*loan.Loan, error) {
	docs := make([]*document.Document, 0, len(in.Documents))
	for _, d := range in.Documents {
		typ, err := document.ParseType(d.Type)
		if err != nil {
			return nil, errs.Validation(err.Error())
		}
		if strings.TrimSpace(d.URL) == "" {
			return nil, errs.Validation("documentUrl is required")
		}
		docs = append(docs, &document.Document{
			ID:           id.NewID32(),
			UserID:       in.BorrowerID,
			DocumentType: typ,
			DocumentURL:  strings.TrimSpace(d.URL),
			Status:       document.StatusPending,
		})
	}

	now := u.now()
	var out *loan.Loan
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		o, err := r.Offers.GetByIDForUpdate(ctx, in.OfferID)
		if err != nil {
			return notFound(err, "loan offer")
		}
		if o.Status != offer.StatusPending {
			return errs.InvalidState("only pending offers can be accepted")
		}
		req, err := r.Requests.GetByIDForUpdate(ctx, o.LoanRequestID)
		if err != nil {
			return notFound(err, "loan request")
		}
		if req.BorrowerID != in.BorrowerID {
			return errs.Forbidden("only the request owner may accept offers")
		}
		if !req.OpenForFunding() {
			return errs.InvalidState("loan request is no longer open for funding")
		}
		if o.Amount.GreaterThan(req.AmountNeeded) {
			return errs.InvalidState("offer exceeds the amount still needed")
		}

		rate := money.EffectiveRate(&o.InterestRate, &req.InterestRate)
		total := money.TotalWithInterest(o.Amount, rate)
		l := &loan.Loan{
			ID:               id.NewID32(),
			LoanNumber:       id.NewLoanNumber(now),
			LoanRequestID:    req.ID,
			LoanOfferID:      o.ID,
			BorrowerID:       req.BorrowerID,
			LenderID:         o.LenderID,
			Amount:           o.Amount,
			InterestRate:     rate,
			DurationDays:     req.DurationDays,
			TotalAmount:      total,
			AmountPaid:       decimal.Zero,
			AmountDue:        total,
			Status:           loan.StatusPending,
			SignedByBorrower: true,
			PenaltyAmount:    decimal.Zero,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		o.Status = offer.StatusAccepted
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		req.ApplyFunding(o.Amount)
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}

		for _, d := range docs {
			offerID := o.ID
			d.LoanOfferID = &offerID
		}
		if err := r.Documents.CreateMany(ctx, docs); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersAccepted.Inc()
	u.log.WithFields(logrus.Fields{"loan_id": out.ID, "offer_id": out.LoanOfferID, "user_id": out.BorrowerID}).Info("offer accepted")

	borrower := u.displayName(ctx, out.BorrowerID, "The borrower")
	lender := u.displayName(ctx, out.LenderID, "the lender")
	u.notify.Notify(ctx, notification.OfferAcceptedLender(out.LenderID, borrower, out.Amount, out.ID))
	u.notify.Notify(ctx, notification.OfferAcceptedBorrower(out.BorrowerID, lender, out.Amount, out.ID))
	return out, nil
}

func (u *Usecase) displayName(ctx context.Context, userID, fallback string) string {
	usr, err := u.repos.Users.GetByID(ctx, userID)
	if err != nil || usr.FullName() == "" {
		return fallback
	}
	return usr.FullName()
}
