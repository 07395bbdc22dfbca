package funding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"

	"microlend/internal/domain/document"
	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/uow"
	"microlend/internal/domain/user"
	"microlend/internal/testutil/memstore"
	"microlend/internal/testutil/notifymock"
	"microlend/internal/usecase/eligibility"
)

var now = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	uc    *Usecase
	store *memstore.Store
	rec   *notifymock.Recorder
}

func setupWith(t *testing.T, tx func(*memstore.Store) uow.UnitOfWork) fixture {
	t.Helper()
	s := memstore.New()
	s.PutUser(user.User{ID: "b1", FirstName: "Alice", Status: user.StatusPending})
	s.PutUser(user.User{ID: "b2", FirstName: "Dan", Status: user.StatusActive})
	s.PutUser(user.User{ID: "l1", FirstName: "Bob", Status: user.StatusActive})
	s.PutUser(user.User{ID: "l2", FirstName: "Carol", Status: user.StatusActive})
	s.PutUser(user.User{ID: "l3", FirstName: "Eve", Status: user.StatusActive})
	s.PutDocument(document.Document{ID: "id-b1", UserID: "b1", DocumentType: document.TypeNationalID, Status: document.StatusVerified})

	logger, _ := test.NewNullLogger()
	rec := &notifymock.Recorder{}
	r := s.Repos()
	uc := NewUsecase(tx(s), r, eligibility.NewUsecase(r.Users, r.Documents), rec, logger)
	uc.now = func() time.Time { return now }
	return fixture{uc: uc, store: s, rec: rec}
}

func setup(t *testing.T) fixture {
	return setupWith(t, func(s *memstore.Store) uow.UnitOfWork { return s })
}

func (f fixture) request(t *testing.T, amount int64) *loanrequest.Request {
	t.Helper()
	r, err := f.uc.CreateRequest(context.Background(), CreateRequestInput{BorrowerID: "b1", Amount: dec(amount), DurationDays: 30, Purpose: "stock"})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	return r
}

func (f fixture) offer(t *testing.T, requestID, lenderID string, amount int64) *offer.Offer {
	t.Helper()
	o, err := f.uc.CreateOffer(context.Background(), CreateOfferInput{RequestID: requestID, LenderID: lenderID, Amount: dec(amount)})
	if err != nil {
		t.Fatalf("CreateOffer(%s, %d): %v", lenderID, amount, err)
	}
	return o
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want %v", err, kind)
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	f := setup(t)
	past := now.Add(-time.Hour)
	big := dec(200)
	rate := 120.0
	tests := []struct {
		name string
		in   CreateRequestInput
		kind error
	}{
		{"zero amount", CreateRequestInput{BorrowerID: "b1", DurationDays: 30}, errs.ErrValidation},
		{"no duration", CreateRequestInput{BorrowerID: "b1", Amount: dec(100)}, errs.ErrValidation},
		{"min above amount", CreateRequestInput{BorrowerID: "b1", Amount: dec(100), DurationDays: 30, MinAmount: &big}, errs.ErrValidation},
		{"rate out of range", CreateRequestInput{BorrowerID: "b1", Amount: dec(100), DurationDays: 30, InterestRate: &rate}, errs.ErrValidation},
		{"expired", CreateRequestInput{BorrowerID: "b1", Amount: dec(100), DurationDays: 30, ExpiresAt: &past}, errs.ErrValidation},
		{"unverified borrower", CreateRequestInput{BorrowerID: "b2", Amount: dec(100), DurationDays: 30}, errs.ErrForbidden},
		{"unknown borrower", CreateRequestInput{BorrowerID: "nobody", Amount: dec(100), DurationDays: 30}, errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateRequest(context.Background(), tt.in)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestCreateRequest_Defaults(t *testing.T) {
	f := setup(t)
	r := f.request(t, 100000)
	if r.Status != loanrequest.StatusOpen || r.InterestRate != 6.0 {
		t.Fatalf("request = %s rate %v", r.Status, r.InterestRate)
	}
	if !r.AmountNeeded.Equal(dec(100000)) || !r.AmountFunded.IsZero() {
		t.Fatalf("tallies = funded %s needed %s", r.AmountFunded, r.AmountNeeded)
	}
	if got := f.store.Request(r.ID); got.BorrowerID != "b1" {
		t.Fatalf("stored request = %+v", got)
	}
}

func TestCreateOffer(t *testing.T) {
	f := setup(t)
	rate := 9.0
	r, err := f.uc.CreateRequest(context.Background(), CreateRequestInput{BorrowerID: "b1", Amount: dec(1000), DurationDays: 30, InterestRate: &rate})
	if err != nil {
		t.Fatal(err)
	}

	o := f.offer(t, r.ID, "l1", 500)
	if o.InterestRate != 9.0 || o.Status != offer.StatusPending {
		t.Fatalf("offer = %+v", o)
	}
	msgs := f.rec.For("b1")
	if len(msgs) != 1 || msgs[0].Title != "New Loan Offer Received" || !strings.Contains(msgs[0].Body, "Bob") {
		t.Fatalf("borrower notifications = %+v", msgs)
	}

	ctx := context.Background()
	_, err = f.uc.CreateOffer(ctx, CreateOfferInput{RequestID: r.ID, LenderID: "l1", Amount: dec(100)})
	wantKind(t, err, errs.ErrInvalidState)

	_, err = f.uc.CreateOffer(ctx, CreateOfferInput{RequestID: r.ID, LenderID: "b1", Amount: dec(100)})
	wantKind(t, err, errs.ErrForbidden)

	_, err = f.uc.CreateOffer(ctx, CreateOfferInput{RequestID: r.ID, LenderID: "l2", Amount: dec(1001)})
	wantKind(t, err, errs.ErrValidation)

	_, err = f.uc.CreateOffer(ctx, CreateOfferInput{RequestID: "missing", LenderID: "l2", Amount: dec(10)})
	wantKind(t, err, errs.ErrNotFound)

	// a withdrawn offer no longer blocks a new one
	if _, err := f.uc.WithdrawOffer(ctx, o.ID, "l1"); err != nil {
		t.Fatalf("WithdrawOffer: %v", err)
	}
	f.offer(t, r.ID, "l1", 200)
}

func TestCreateOffer_MinAmount(t *testing.T) {
	f := setup(t)
	floor := dec(300)
	r, err := f.uc.CreateRequest(context.Background(), CreateRequestInput{BorrowerID: "b1", Amount: dec(1000), DurationDays: 30, MinAmount: &floor})
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.uc.CreateOffer(context.Background(), CreateOfferInput{RequestID: r.ID, LenderID: "l1", Amount: dec(299)})
	wantKind(t, err, errs.ErrValidation)
	f.offer(t, r.ID, "l1", 300)
}

func TestAcceptOffer_FullFunding(t *testing.T) {
	f := setup(t)
	r := f.request(t, 100000)
	o := f.offer(t, r.ID, "l1", 100000)
	f.rec.Reset()

	l, err := f.uc.AcceptOffer(context.Background(), AcceptOfferInput{
		OfferID:    o.ID,
		BorrowerID: "b1",
		Documents:  []DocumentInput{{Type: "PROOF_OF_INCOME", URL: "https://files/payslip.pdf"}},
	})
	if err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}

	if !l.TotalAmount.Equal(dec(106000)) || !l.AmountDue.Equal(dec(106000)) || !l.AmountPaid.IsZero() {
		t.Fatalf("amounts = total %s due %s paid %s", l.TotalAmount, l.AmountDue, l.AmountPaid)
	}
	if l.Status != loan.StatusPending || !l.SignedByBorrower || l.SignedByLender || l.DueDate != nil || l.DisbursedAt != nil {
		t.Fatalf("loan = %+v", l)
	}
	if l.BorrowerID != "b1" || l.LenderID != "l1" || l.DurationDays != 30 || l.LoanOfferID != o.ID || l.LoanRequestID != r.ID {
		t.Fatalf("loan links = %+v", l)
	}
	if !strings.HasPrefix(l.LoanNumber, "LN-20260110-") {
		t.Fatalf("loan number = %q", l.LoanNumber)
	}

	if got := f.store.Offer(o.ID); got.Status != offer.StatusAccepted {
		t.Fatalf("offer status = %s", got.Status)
	}
	req := f.store.Request(r.ID)
	if req.Status != loanrequest.StatusFunded || !req.AmountNeeded.IsZero() || !req.AmountFunded.Equal(dec(100000)) {
		t.Fatalf("request = %s funded %s needed %s", req.Status, req.AmountFunded, req.AmountNeeded)
	}

	var found bool
	for _, d := range f.store.Documents() {
		if d.DocumentType == document.TypeProofOfIncome {
			found = d.Status == document.StatusPending && d.UserID == "b1" && d.LoanOfferID != nil && *d.LoanOfferID == o.ID
		}
	}
	if !found {
		t.Fatalf("document not stored: %+v", f.store.Documents())
	}

	if m := f.rec.For("l1"); len(m) != 1 || m[0].Title != "Your Offer Accepted" || !strings.Contains(m[0].Body, "Alice") {
		t.Fatalf("lender notifications = %+v", m)
	}
	if m := f.rec.For("b1"); len(m) != 1 || m[0].Title != "Loan Offer Accepted" {
		t.Fatalf("borrower notifications = %+v", m)
	}
}

func TestAcceptOffer_SequentialPartialFunding(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.request(t, 100000)
	o1 := f.offer(t, r.ID, "l1", 40000)
	o2 := f.offer(t, r.ID, "l2", 60000)
	o3 := f.offer(t, r.ID, "l3", 50000)

	if _, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o1.ID, BorrowerID: "b1"}); err != nil {
		t.Fatalf("accept o1: %v", err)
	}
	req := f.store.Request(r.ID)
	if req.Status != loanrequest.StatusPartial || !req.AmountNeeded.Equal(dec(60000)) {
		t.Fatalf("after o1 = %s needed %s", req.Status, req.AmountNeeded)
	}

	if _, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o2.ID, BorrowerID: "b1"}); err != nil {
		t.Fatalf("accept o2: %v", err)
	}
	req = f.store.Request(r.ID)
	if req.Status != loanrequest.StatusFunded || !req.AmountFunded.Equal(dec(100000)) || !req.AmountNeeded.IsZero() {
		t.Fatalf("after o2 = %s funded %s needed %s", req.Status, req.AmountFunded, req.AmountNeeded)
	}

	_, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o3.ID, BorrowerID: "b1"})
	wantKind(t, err, errs.ErrInvalidState)
	if f.store.LoanCount() != 2 {
		t.Fatalf("loans = %d, want 2", f.store.LoanCount())
	}
	if got := f.store.Request(r.ID).AmountNeeded; got.IsNegative() {
		t.Fatalf("amountNeeded went negative: %s", got)
	}
}

func TestAcceptOffer_ExceedsRemaining(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.request(t, 100000)
	o1 := f.offer(t, r.ID, "l1", 70000)
	o2 := f.offer(t, r.ID, "l2", 60000)

	if _, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o1.ID, BorrowerID: "b1"}); err != nil {
		t.Fatal(err)
	}
	_, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o2.ID, BorrowerID: "b1"})
	wantKind(t, err, errs.ErrInvalidState)
	if got := f.store.Offer(o2.ID).Status; got != offer.StatusPending {
		t.Fatalf("o2 status = %s", got)
	}
	if got := f.store.Request(r.ID).AmountNeeded; !got.Equal(dec(30000)) {
		t.Fatalf("needed = %s", got)
	}
}

func TestAcceptOffer_Preconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.request(t, 1000)
	o := f.offer(t, r.ID, "l1", 500)

	_, err := f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: "missing", BorrowerID: "b1"})
	wantKind(t, err, errs.ErrNotFound)

	_, err = f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o.ID, BorrowerID: "b2"})
	wantKind(t, err, errs.ErrForbidden)

	_, err = f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o.ID, BorrowerID: "b1", Documents: []DocumentInput{{Type: "SELFIE", URL: "x"}}})
	wantKind(t, err, errs.ErrValidation)

	if _, err := f.uc.RejectOffer(ctx, o.ID, "b1"); err != nil {
		t.Fatalf("RejectOffer: %v", err)
	}
	_, err = f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o.ID, BorrowerID: "b1"})
	wantKind(t, err, errs.ErrInvalidState)

	o2 := f.offer(t, r.ID, "l2", 500)
	if _, err := f.uc.CancelRequest(ctx, r.ID, "b1"); err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	// cancelling rejected the pending offer
	_, err = f.uc.AcceptOffer(ctx, AcceptOfferInput{OfferID: o2.ID, BorrowerID: "b1"})
	wantKind(t, err, errs.ErrInvalidState)
	if f.store.LoanCount() != 0 {
		t.Fatalf("loans = %d", f.store.LoanCount())
	}
}

type brokenDocs struct{ document.Repository }

func (brokenDocs) CreateMany(context.Context, []*document.Document) error {
	return errors.New("insert documents: connection reset")
}

// brokenDocsTx fails the last write of an acceptance.
type brokenDocsTx struct{ *memstore.Store }

func (b brokenDocsTx) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return b.Store.WithinTx(ctx, func(r uow.Repos) error {
		r.Documents = brokenDocs{r.Documents}
		return fn(r)
	})
}

func TestAcceptOffer_RollsBackOnFailure(t *testing.T) {
	f := setupWith(t, func(s *memstore.Store) uow.UnitOfWork { return brokenDocsTx{s} })
	r := f.request(t, 1000)
	o := f.offer(t, r.ID, "l1", 1000)
	f.rec.Reset()

	_, err := f.uc.AcceptOffer(context.Background(), AcceptOfferInput{
		OfferID: o.ID, BorrowerID: "b1",
		Documents: []DocumentInput{{Type: "PASSPORT", URL: "https://files/p.jpg"}},
	})
	if err == nil {
		t.Fatal("want error")
	}
	if f.store.LoanCount() != 0 {
		t.Fatalf("loan left behind")
	}
	if got := f.store.Offer(o.ID).Status; got != offer.StatusPending {
		t.Fatalf("offer = %s, want PENDING", got)
	}
	req := f.store.Request(r.ID)
	if req.Status != loanrequest.StatusOpen || !req.AmountFunded.IsZero() {
		t.Fatalf("request = %s funded %s", req.Status, req.AmountFunded)
	}
	if len(f.rec.Messages()) != 0 {
		t.Fatalf("notified on failure: %+v", f.rec.Messages())
	}
}

func TestRejectAndWithdraw(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.request(t, 1000)
	o1 := f.offer(t, r.ID, "l1", 500)
	o2 := f.offer(t, r.ID, "l2", 500)

	_, err := f.uc.RejectOffer(ctx, o1.ID, "l1")
	wantKind(t, err, errs.ErrForbidden)
	if _, err := f.uc.RejectOffer(ctx, o1.ID, "b1"); err != nil {
		t.Fatal(err)
	}
	if m := f.rec.For("l1"); len(m) != 1 || m[0].Title != "Loan Offer Declined" {
		t.Fatalf("lender notifications = %+v", m)
	}

	_, err = f.uc.WithdrawOffer(ctx, o2.ID, "l1")
	wantKind(t, err, errs.ErrForbidden)
	w, err := f.uc.WithdrawOffer(ctx, o2.ID, "l2")
	if err != nil || w.Status != offer.StatusWithdrawn {
		t.Fatalf("WithdrawOffer = %+v, %v", w, err)
	}
	_, err = f.uc.WithdrawOffer(ctx, o2.ID, "l2")
	wantKind(t, err, errs.ErrInvalidState)

	offers, err := f.uc.ListOffers(ctx, r.ID)
	if err != nil || len(offers) != 2 {
		t.Fatalf("ListOffers = %d, %v", len(offers), err)
	}
}

func TestCancelRequest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.request(t, 1000)
	o := f.offer(t, r.ID, "l1", 400)

	_, err := f.uc.CancelRequest(ctx, r.ID, "b2")
	wantKind(t, err, errs.ErrForbidden)

	got, err := f.uc.CancelRequest(ctx, r.ID, "b1")
	if err != nil || got.Status != loanrequest.StatusCancelled {
		t.Fatalf("CancelRequest = %+v, %v", got, err)
	}
	if s := f.store.Offer(o.ID).Status; s != offer.StatusRejected {
		t.Fatalf("offer = %s, want REJECTED", s)
	}
	_, err = f.uc.CancelRequest(ctx, r.ID, "b1")
	wantKind(t, err, errs.ErrInvalidState)

	open, _ := f.uc.ListOpenRequests(ctx, 10)
	if len(open) != 0 {
		t.Fatalf("open requests = %d", len(open))
	}
	mine, _ := f.uc.ListMyRequests(ctx, "b1")
	if len(mine) != 1 {
		t.Fatalf("my requests = %d", len(mine))
	}
}

func TestExpireRequests(t *testing.T) {
	f := setup(t)
	past, future := now.Add(-time.Minute), now.Add(24*time.Hour)
	f.store.PutRequest(loanrequest.Request{ID: "stale", BorrowerID: "b1", Amount: dec(100), AmountNeeded: dec(100), Status: loanrequest.StatusOpen, ExpiresAt: &past})
	f.store.PutRequest(loanrequest.Request{ID: "deadline", BorrowerID: "b1", Amount: dec(100), AmountFunded: dec(40), AmountNeeded: dec(60), Status: loanrequest.StatusPartial, ExpiresAt: &future, FundingDeadline: &past})
	f.store.PutRequest(loanrequest.Request{ID: "fresh", BorrowerID: "b1", Amount: dec(100), AmountNeeded: dec(100), Status: loanrequest.StatusOpen, ExpiresAt: &future})
	f.store.PutRequest(loanrequest.Request{ID: "done", BorrowerID: "b1", Amount: dec(100), AmountFunded: dec(100), Status: loanrequest.StatusFunded, ExpiresAt: &past})
	f.store.PutOffer(offer.Offer{ID: "o-stale", LoanRequestID: "stale", LenderID: "l1", Amount: dec(50), Status: offer.StatusPending})

	expired, failed, err := f.uc.ExpireRequests(context.Background())
	if err != nil || expired != 2 || failed != 0 {
		t.Fatalf("ExpireRequests = %d, %d, %v", expired, failed, err)
	}
	for id, want := range map[string]loanrequest.Status{
		"stale": loanrequest.StatusExpired, "deadline": loanrequest.StatusExpired,
		"fresh": loanrequest.StatusOpen, "done": loanrequest.StatusFunded,
	} {
		if got := f.store.Request(id).Status; got != want {
			t.Fatalf("%s = %s, want %s", id, got, want)
		}
	}
	if s := f.store.Offer("o-stale").Status; s != offer.StatusRejected {
		t.Fatalf("offer on expired request = %s", s)
	}
}
