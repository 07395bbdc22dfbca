package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/uow"
	"microlend/internal/domain/user"
	"microlend/internal/testutil/loanmock"
	"microlend/internal/testutil/notifymock"
	"microlend/internal/testutil/uowmock"
	"microlend/internal/testutil/usermock"
)

var errDB = errors.New("connection reset")

// mocked storage: each test fills in only the calls it expects.
func mocked(tx *uowmock.UoW, repos uow.Repos) (*Usecase, *notifymock.Recorder) {
	logger, _ := test.NewNullLogger()
	rec := &notifymock.Recorder{}
	uc := NewUsecase(tx, repos, rec, logger)
	uc.now = func() time.Time { return t0 }
	return uc, rec
}

func TestSign_CounterFailureAbortsWithoutSideEffects(t *testing.T) {
	l := pending("ln1")
	var saved bool
	repos := uow.Repos{
		Loans: &loanmock.Repo{
			GetByIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) { return &l, nil },
			SaveFn:             func(context.Context, *loan.Loan) error { saved = true; return nil },
		},
		Users: &usermock.Repo{AddCountersFn: func(_ context.Context, id string, _ user.Counters) error {
			if id == "l1" {
				return errDB
			}
			return nil
		}},
	}
	uc, rec := mocked(uowmock.Passthrough(repos), repos)

	if _, err := uc.SignByLender(context.Background(), "ln1", "l1"); !errors.Is(err, errDB) {
		t.Fatalf("err = %v, want %v", err, errDB)
	}
	if !saved {
		t.Fatal("loan save should have run before the counter update")
	}
	if len(rec.Messages()) != 0 {
		t.Fatalf("no notification may follow a failed transaction, got %v", rec.Messages())
	}
}

func TestTransitions_PropagateTxErrors(t *testing.T) {
	tx := uowmock.New().WithWithinLoanTx(func(context.Context, string, func(uow.Repos, *loan.Loan) error) error {
		return errDB
	})
	uc, rec := mocked(tx, uow.Repos{})
	ctx := context.Background()

	calls := map[string]func() error{
		"sign":     func() error { _, err := uc.SignByLender(ctx, "ln1", "l1"); return err },
		"markPaid": func() error { _, err := uc.MarkPaidByBorrower(ctx, "ln1", "b1", "receipt"); return err },
		"confirm":  func() error { _, err := uc.ConfirmPaymentByLender(ctx, "ln1", "l1"); return err },
		"default":  func() error { _, err := uc.MarkDefaulted(ctx, "ln1"); return err },
		"cancel":   func() error { _, err := uc.Cancel(ctx, "ln1"); return err },
		"overdue":  func() error { _, err := uc.FlagOverdue(ctx, "ln1"); return err },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, errDB) {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
	if len(rec.Messages()) != 0 {
		t.Fatalf("unexpected notifications: %v", rec.Messages())
	}
}

func TestGet_TranslatesRecordNotFound(t *testing.T) {
	missing := &loanmock.Repo{GetByIDFn: func(context.Context, string) (*loan.Loan, error) { return nil, gorm.ErrRecordNotFound }}
	uc, _ := mocked(uowmock.New(), uow.Repos{Loans: missing})
	if _, err := uc.Get(context.Background(), "ln1", "b1", false); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	broken := &loanmock.Repo{GetByIDFn: func(context.Context, string) (*loan.Loan, error) { return nil, errDB }}
	uc, _ = mocked(uowmock.New(), uow.Repos{Loans: broken})
	if _, err := uc.Get(context.Background(), "ln1", "b1", false); !errors.Is(err, errDB) || errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want the storage error", err)
	}
}

func TestSweeps_ListFailure(t *testing.T) {
	loans := &loanmock.Repo{} // list calls default to context.Canceled
	uc, rec := mocked(uowmock.New(), uow.Repos{Loans: loans})

	if _, _, err := uc.MarkOverdue(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("MarkOverdue err = %v", err)
	}
	if _, err := uc.SendReminders(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("SendReminders err = %v", err)
	}
	if len(rec.Messages()) != 0 {
		t.Fatal("nothing should be sent when the listing fails")
	}
}
