// Package lifecycle drives a loan from PENDING to a terminal status through
// named transitions. Score-affecting transitions call the trust score engine
// inside the same transaction; notifications go out after commit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/uow"
	"microlend/internal/domain/user"
	"microlend/internal/infrastructure/metrics"
	"microlend/internal/usecase/trustscore"
)

const day = 24 * time.Hour

// Reminder window, relative to now.
const (
	reminderFrom = 3 * day
	reminderTo   = 7 * day
)

type Usecase struct {
	tx     uow.UnitOfWork
	repos  uow.Repos
	notify notification.Sink
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, sink notification.Sink, log logrus.FieldLogger) *Usecase {
	return &Usecase{tx: tx, repos: repos, notify: sink, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func guard(l *loan.Loan, to loan.Status) error {
	if !loan.CanTransition(l.Status, to) {
		return errs.InvalidState(fmt.Sprintf("loan cannot move from %s to %s", l.Status, to))
	}
	return nil
}

func outcome(l *loan.Loan, status loan.Status, lateDays int) trustscore.Outcome {
	return trustscore.Outcome{
		UserID:   l.BorrowerID,
		LoanID:   l.ID,
		Status:   status,
		LateDays: lateDays,
		Metadata: map[string]any{"loanNumber": l.LoanNumber, "amount": l.TotalAmount.InexactFloat64()},
	}
}

// committed records a transition that has been written and fans out its
// notifications.
func (u *Usecase) committed(ctx context.Context, l *loan.Loan, change *trustscore.Change, msgs ...notification.Message) {
	metrics.LoanTransitions.WithLabelValues(string(l.Status)).Inc()
	u.log.WithFields(logrus.Fields{"loan_id": l.ID, "status": l.Status}).Info("loan transition")
	if change != nil {
		change.Observe()
		msgs = append(msgs, change.Message())
	}
	for _, m := range msgs {
		u.notify.Notify(ctx, m)
	}
}

func (u *Usecase) displayName(ctx context.Context, userID, fallback string) string {
	usr, err := u.repos.Users.GetByID(ctx, userID)
	if err != nil || usr.FullName() == "" {
		return fallback
	}
	return usr.FullName()
}

func (u *Usecase) parties(ctx context.Context, l *loan.Loan) (borrower, lender string) {
	return u.displayName(ctx, l.BorrowerID, "The borrower"), u.displayName(ctx, l.LenderID, "The lender")
}

// SignByLender activates a loan the borrower has already signed. The due
// date is exactly durationDays after disbursement.
func (u *Usecase) SignByLender(ctx context.Context, loanID, lenderID string) (*loan.Loan, error) {
	now := u.now()
	var out *loan.Loan
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		switch {
		case l.LenderID != lenderID:
			return errs.Forbidden("only the lender can sign this loan")
		case l.Status != loan.StatusPending:
			return errs.InvalidState("only pending loans can be signed")
		case !l.SignedByBorrower:
			return errs.InvalidState("borrower must sign the loan first")
		case l.SignedByLender:
			return errs.InvalidState("loan is already signed by the lender")
		}

		disbursed, due := now, now.Add(time.Duration(l.DurationDays)*day)
		l.SignedByLender = true
		l.Status = loan.StatusActive
		l.DisbursedAt = &disbursed
		l.DueDate = &due
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Users.AddCounters(ctx, l.BorrowerID, user.Counters{TotalBorrowed: l.Amount, CurrentDebt: l.TotalAmount}); err != nil {
			return err
		}
		if err := r.Users.AddCounters(ctx, l.LenderID, user.Counters{TotalLent: l.Amount}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	borrower, lender := u.parties(ctx, out)
	u.committed(ctx, out, nil,
		notification.LoanSignedBorrower(out.BorrowerID, lender, out.Amount, *out.DueDate, out.ID),
		notification.LoanSignedLender(out.LenderID, borrower, out.Amount, *out.DueDate, out.ID),
	)
	return out, nil
}

// MarkPaidByBorrower records the borrower's payment claim. The lender still
// has to confirm it.
func (u *Usecase) MarkPaidByBorrower(ctx context.Context, loanID, borrowerID, proof string) (*loan.Loan, error) {
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, errs.Validation("payment proof document is required")
	}
	var out *loan.Loan
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.BorrowerID != borrowerID {
			return errs.Forbidden("only the borrower can mark this loan as paid")
		}
		if l.Status != loan.StatusActive && l.Status != loan.StatusOverdue {
			return errs.InvalidState("only active or overdue loans can be marked as paid")
		}
		if l.RepaidAt != nil {
			return errs.InvalidState("loan is already repaid")
		}
		l.Status = loan.StatusPaymentInitiated
		l.AmountPaid = l.TotalAmount
		l.AmountDue = l.TotalAmount.Sub(l.AmountPaid)
		l.PaymentProofDocument = proof
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	borrower, _ := u.parties(ctx, out)
	u.committed(ctx, out, nil, notification.PaymentClaimed(out.LenderID, borrower, out.AmountPaid, out.ID))
	return out, nil
}

// ConfirmPaymentByLender closes the loan as REPAID and scores the borrower
// on how late the confirmation landed.
func (u *Usecase) ConfirmPaymentByLender(ctx context.Context, loanID, lenderID string) (*loan.Loan, error) {
	now := u.now()
	var (
		out    *loan.Loan
		change *trustscore.Change
	)
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		switch {
		case l.LenderID != lenderID:
			return errs.Forbidden("only the lender can confirm payment")
		case l.Status != loan.StatusPaymentInitiated:
			return errs.InvalidState("payment has not been initiated for this loan")
		case l.RepaidAt != nil:
			return errs.InvalidState("loan is already repaid")
		case l.PaymentProofDocument == "":
			return errs.InvalidState("no payment proof on record")
		}

		lateDays := l.LateDaysAt(now, 0)
		repaid := now
		l.Status = loan.StatusRepaid
		l.RepaidAt = &repaid
		l.AmountDue = decimal.Zero
		l.IsLate = lateDays > 0
		l.LateDays = lateDays
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		c, err := trustscore.Apply(ctx, r, outcome(l, loan.StatusRepaid, lateDays))
		if err != nil {
			return err
		}
		if err := r.Users.AddCounters(ctx, l.BorrowerID, user.Counters{TotalRepaid: l.AmountPaid, CurrentDebt: l.TotalAmount.Neg()}); err != nil {
			return err
		}
		out, change = l, c
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, lender := u.parties(ctx, out)
	u.committed(ctx, out, change, notification.PaymentConfirmed(out.BorrowerID, lender, out.AmountPaid, out.ID))
	return out, nil
}

// MarkOverdue moves every ACTIVE loan past its due date to OVERDUE. Each
// loan is its own transaction; failures are logged and the sweep goes on.
// No score change is applied here.
func (u *Usecase) MarkOverdue(ctx context.Context) (marked, failed int, err error) {
	now := u.now()
	due, err := u.repos.Loans.ListActiveDueBefore(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	for _, cand := range due {
		var out *loan.Loan
		txErr := u.tx.WithinLoanTx(ctx, cand.ID, func(r uow.Repos, l *loan.Loan) error {
			// re-check under lock; the loan may have moved since the scan
			if l.Status != loan.StatusActive || l.DueDate == nil || !l.DueDate.Before(now) {
				return nil
			}
			l.Status = loan.StatusOverdue
			l.IsLate = true
			l.LateDays = l.LateDaysAt(now, 1)
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			out = l
			return nil
		})
		if txErr != nil {
			failed++
			u.log.WithError(txErr).WithField("loan_id", cand.ID).Error("mark loan overdue")
			continue
		}
		if out == nil {
			continue
		}
		marked++
		u.committed(ctx, out, nil, u.overdueMessages(ctx, out)...)
	}
	return marked, failed, nil
}

func (u *Usecase) overdueMessages(ctx context.Context, l *loan.Loan) []notification.Message {
	borrower, lender := u.parties(ctx, l)
	return []notification.Message{
		notification.LoanOverdueBorrower(l.BorrowerID, lender, l.TotalAmount, l.LateDays, l.ID),
		notification.LoanOverdueLender(l.LenderID, borrower, l.TotalAmount, l.LateDays, l.ID),
	}
}

// FlagOverdue is the administrative single-loan overdue transition. Unlike
// the sweep it applies the overdue penalty, once.
func (u *Usecase) FlagOverdue(ctx context.Context, loanID string) (*loan.Loan, error) {
	now := u.now()
	var (
		out    *loan.Loan
		change *trustscore.Change
	)
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := guard(l, loan.StatusOverdue); err != nil {
			return err
		}
		l.Status = loan.StatusOverdue
		l.IsLate = true
		l.LateDays = l.LateDaysAt(now, 1)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		c, err := trustscore.Apply(ctx, r, outcome(l, loan.StatusOverdue, l.LateDays))
		if err != nil {
			return err
		}
		out, change = l, c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.committed(ctx, out, change, u.overdueMessages(ctx, out)...)
	return out, nil
}

func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string) (*loan.Loan, error) {
	now := u.now()
	var (
		out    *loan.Loan
		change *trustscore.Change
	)
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := guard(l, loan.StatusDefaulted); err != nil {
			return err
		}
		l.Status = loan.StatusDefaulted
		l.IsLate = true
		l.LateDays = l.LateDaysAt(now, 0)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		c, err := trustscore.Apply(ctx, r, outcome(l, loan.StatusDefaulted, l.LateDays))
		if err != nil {
			return err
		}
		out, change = l, c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.committed(ctx, out, change,
		notification.LoanDefaulted(out.BorrowerID, out.LoanNumber, out.TotalAmount, out.ID),
		notification.LoanDefaulted(out.LenderID, out.LoanNumber, out.TotalAmount, out.ID),
	)
	return out, nil
}

// Cancel is administrative. Cancelling an active loan releases the
// borrower's outstanding debt.
func (u *Usecase) Cancel(ctx context.Context, loanID string) (*loan.Loan, error) {
	var (
		out    *loan.Loan
		change *trustscore.Change
	)
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := guard(l, loan.StatusCancelled); err != nil {
			return err
		}
		wasActive := l.Status == loan.StatusActive
		l.Status = loan.StatusCancelled
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		c, err := trustscore.Apply(ctx, r, outcome(l, loan.StatusCancelled, 0))
		if err != nil {
			return err
		}
		if wasActive {
			if err := r.Users.AddCounters(ctx, l.BorrowerID, user.Counters{CurrentDebt: l.TotalAmount.Neg()}); err != nil {
				return err
			}
		}
		out, change = l, c
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.committed(ctx, out, change,
		notification.LoanCancelled(out.BorrowerID, out.LoanNumber, out.TotalAmount, out.ID),
		notification.LoanCancelled(out.LenderID, out.LoanNumber, out.TotalAmount, out.ID),
	)
	return out, nil
}

// UpdateStatus is the administrative entry point. It only dispatches to the
// named transitions; the remaining statuses have their own operations.
func (u *Usecase) UpdateStatus(ctx context.Context, loanID, raw string) (*loan.Loan, error) {
	status, err := loan.ParseStatus(raw)
	if err != nil {
		return nil, errs.Validation(err.Error())
	}
	switch status {
	case loan.StatusDefaulted:
		return u.MarkDefaulted(ctx, loanID)
	case loan.StatusCancelled:
		return u.Cancel(ctx, loanID)
	case loan.StatusOverdue:
		return u.FlagOverdue(ctx, loanID)
	}
	return nil, errs.InvalidState(fmt.Sprintf("status %s can only be reached through its dedicated operation", status))
}

// Get returns a loan to one of its parties, or to an admin.
func (u *Usecase) Get(ctx context.Context, loanID, actorID string, admin bool) (*loan.Loan, error) {
	l, err := u.repos.Loans.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("loan")
	}
	if err != nil {
		return nil, err
	}
	if !admin && !l.HasParty(actorID) {
		return nil, errs.Forbidden("you are not a party to this loan")
	}
	return l, nil
}

func (u *Usecase) ListMine(ctx context.Context, userID string) ([]loan.Loan, error) {
	return u.repos.Loans.ListByParty(ctx, userID)
}

// daysUntil is ceil((due - now) / 1 day), never negative.
func daysUntil(now, due time.Time) int {
	d := int(math.Ceil(float64(due.Sub(now)) / float64(day)))
	if d < 0 {
		return 0
	}
	return d
}

// SendReminders notifies both parties of every ACTIVE loan due between three
// and seven days from now.
func (u *Usecase) SendReminders(ctx context.Context) (int, error) {
	now := u.now()
	loans, err := u.repos.Loans.ListActiveDueBetween(ctx, now.Add(reminderFrom), now.Add(reminderTo))
	if err != nil {
		return 0, err
	}
	for i := range loans {
		l := &loans[i]
		days := daysUntil(now, *l.DueDate)
		borrower, lender := u.parties(ctx, l)
		u.notify.Notify(ctx, notification.PaymentDueSoonBorrower(l.BorrowerID, lender, l.TotalAmount, days, l.ID))
		u.notify.Notify(ctx, notification.PaymentDueSoonLender(l.LenderID, borrower, l.TotalAmount, days, l.ID))
	}
	return len(loans), nil
}
