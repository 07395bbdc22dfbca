// Package memstore is an in-memory unit of work for usecase tests. A failed
// transaction restores the state it started from.
package memstore

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"microlend/internal/domain/document"
	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/uow"
	"microlend/internal/domain/user"
)

var _ uow.UnitOfWork = (*Store)(nil)

type state struct {
	users    map[string]user.User
	requests map[string]loanrequest.Request
	offers   map[string]offer.Offer
	loans    map[string]loan.Loan
	history  []trust.History
	docs     []document.Document
	notifs   map[string]notification.Notification
}

func (s state) clone() state {
	return state{
		users:    maps.Clone(s.users),
		requests: maps.Clone(s.requests),
		offers:   maps.Clone(s.offers),
		loans:    maps.Clone(s.loans),
		history:  append([]trust.History(nil), s.history...),
		docs:     append([]document.Document(nil), s.docs...),
		notifs:   maps.Clone(s.notifs),
	}
}

type Store struct {
	mu  sync.Mutex
	st  state
	seq int64

	// FailNext, when set, is returned by the next repository write.
	FailNext error
}

func New() *Store {
	return &Store{st: state{
		users:    map[string]user.User{},
		requests: map[string]loanrequest.Request{},
		offers:   map[string]offer.Offer{},
		loans:    map[string]loan.Loan{},
		notifs:   map[string]notification.Notification{},
	}}
}

// Repos returns repositories that each take the store lock per call.
func (s *Store) Repos() uow.Repos { return s.repos(false) }

func (s *Store) repos(inTx bool) uow.Repos {
	return uow.Repos{
		Users:     &Users{s: s, tx: inTx},
		Requests:  &Requests{s: s, tx: inTx},
		Offers:    &Offers{s: s, tx: inTx},
		Loans:     &Loans{s: s, tx: inTx},
		Trust:     &History{s: s, tx: inTx},
		Documents: &Documents{s: s, tx: inTx},
	}
}

func (s *Store) Notifications() *Notifications { return &Notifications{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("loan")
		}
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) failure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// tick returns strictly increasing timestamps so newest-first ordering is stable.
func (s *Store) tick() time.Time {
	s.seq++
	return time.Unix(1_700_000_000+s.seq, 0).UTC()
}

// --- seeding and inspection helpers ---

func (s *Store) PutUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

func (s *Store) PutDocument(d document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.docs = append(s.st.docs, d)
}

func (s *Store) PutLoan(l loan.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.loans[l.ID] = l
}

func (s *Store) PutRequest(r loanrequest.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.requests[r.ID] = r
}

func (s *Store) PutOffer(o offer.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.offers[o.ID] = o
}

func (s *Store) User(id string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[id]
}

func (s *Store) Loan(id string) loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.loans[id]
}

func (s *Store) Request(id string) loanrequest.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.requests[id]
}

func (s *Store) Offer(id string) offer.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.offers[id]
}

func (s *Store) LoanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.loans)
}

func (s *Store) HistoryFor(userID string) []trust.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []trust.History
	for _, h := range s.st.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) Documents() []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]document.Document(nil), s.st.docs...)
}

func newestFirst[T any](xs []T, created func(T) time.Time) {
	sort.SliceStable(xs, func(i, j int) bool { return created(xs[i]).After(created(xs[j])) })
}
