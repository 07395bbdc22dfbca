package memstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"microlend/internal/domain/document"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/loanrequest"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/offer"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/user"
)

type Users struct {
	s  *Store
	tx bool
}

func (r *Users) Create(_ context.Context, u *user.User) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	u.CreatedAt = r.s.tick()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	defer r.s.lock(r.tx)()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *Users) GetByIDForUpdate(ctx context.Context, id string) (*user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *Users) UpdateScore(_ context.Context, id string, score int, category user.Category) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	u, ok := r.s.st.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TrustScore, u.Category = score, category
	r.s.st.users[id] = u
	return nil
}

func (r *Users) AddCounters(_ context.Context, id string, d user.Counters) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	u, ok := r.s.st.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TotalBorrowed = u.TotalBorrowed.Add(d.TotalBorrowed)
	u.TotalLent = u.TotalLent.Add(d.TotalLent)
	u.TotalRepaid = u.TotalRepaid.Add(d.TotalRepaid)
	u.CurrentDebt = u.CurrentDebt.Add(d.CurrentDebt)
	r.s.st.users[id] = u
	return nil
}

type Requests struct {
	s  *Store
	tx bool
}

func (r *Requests) Create(_ context.Context, lr *loanrequest.Request) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	lr.CreatedAt = r.s.tick()
	r.s.st.requests[lr.ID] = *lr
	return nil
}

func (r *Requests) GetByID(_ context.Context, id string) (*loanrequest.Request, error) {
	defer r.s.lock(r.tx)()
	lr, ok := r.s.st.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &lr, nil
}

func (r *Requests) GetByIDForUpdate(ctx context.Context, id string) (*loanrequest.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *Requests) Save(_ context.Context, lr *loanrequest.Request) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	r.s.st.requests[lr.ID] = *lr
	return nil
}

func (r *Requests) list(keep func(loanrequest.Request) bool) []loanrequest.Request {
	var out []loanrequest.Request
	for _, lr := range r.s.st.requests {
		if keep(lr) {
			out = append(out, lr)
		}
	}
	newestFirst(out, func(lr loanrequest.Request) time.Time { return lr.CreatedAt })
	return out
}

func (r *Requests) ListOpen(_ context.Context, limit int) ([]loanrequest.Request, error) {
	defer r.s.lock(r.tx)()
	out := r.list(func(lr loanrequest.Request) bool {
		return lr.Status == loanrequest.StatusOpen || lr.Status == loanrequest.StatusPartial
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Requests) ListByBorrower(_ context.Context, borrowerID string) ([]loanrequest.Request, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(lr loanrequest.Request) bool { return lr.BorrowerID == borrowerID }), nil
}

func (r *Requests) ListExpirable(_ context.Context, t time.Time) ([]loanrequest.Request, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(lr loanrequest.Request) bool {
		if lr.Status != loanrequest.StatusOpen && lr.Status != loanrequest.StatusPartial {
			return false
		}
		d := lr.Deadline()
		return d != nil && d.Before(t)
	}), nil
}

type Offers struct {
	s  *Store
	tx bool
}

func (r *Offers) Create(_ context.Context, o *offer.Offer) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	o.CreatedAt = r.s.tick()
	r.s.st.offers[o.ID] = *o
	return nil
}

func (r *Offers) GetByID(_ context.Context, id string) (*offer.Offer, error) {
	defer r.s.lock(r.tx)()
	o, ok := r.s.st.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *Offers) GetByIDForUpdate(ctx context.Context, id string) (*offer.Offer, error) {
	return r.GetByID(ctx, id)
}

func (r *Offers) Save(_ context.Context, o *offer.Offer) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	r.s.st.offers[o.ID] = *o
	return nil
}

func (r *Offers) HasPending(_ context.Context, requestID, lenderID string) (bool, error) {
	defer r.s.lock(r.tx)()
	for _, o := range r.s.st.offers {
		if o.LoanRequestID == requestID && o.LenderID == lenderID && o.Status == offer.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *Offers) ListByRequest(_ context.Context, requestID string) ([]offer.Offer, error) {
	defer r.s.lock(r.tx)()
	var out []offer.Offer
	for _, o := range r.s.st.offers {
		if o.LoanRequestID == requestID {
			out = append(out, o)
		}
	}
	newestFirst(out, func(o offer.Offer) time.Time { return o.CreatedAt })
	return out, nil
}

func (r *Offers) RejectPending(_ context.Context, requestID string) (int64, error) {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return 0, err
	}
	var n int64
	for id, o := range r.s.st.offers {
		if o.LoanRequestID == requestID && o.Status == offer.StatusPending {
			o.Status = offer.StatusRejected
			r.s.st.offers[id] = o
			n++
		}
	}
	return n, nil
}

type Loans struct {
	s  *Store
	tx bool
}

func (r *Loans) Create(_ context.Context, l *loan.Loan) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	l.CreatedAt = r.s.tick()
	r.s.st.loans[l.ID] = *l
	return nil
}

func (r *Loans) GetByID(_ context.Context, id string) (*loan.Loan, error) {
	defer r.s.lock(r.tx)()
	l, ok := r.s.st.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *Loans) GetByIDForUpdate(ctx context.Context, id string) (*loan.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *Loans) Save(_ context.Context, l *loan.Loan) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	r.s.st.loans[l.ID] = *l
	return nil
}

func (r *Loans) list(keep func(loan.Loan) bool) []loan.Loan {
	var out []loan.Loan
	for _, l := range r.s.st.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	newestFirst(out, func(l loan.Loan) time.Time { return l.CreatedAt })
	return out
}

func (r *Loans) ListActiveDueBefore(_ context.Context, t time.Time) ([]loan.Loan, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(l loan.Loan) bool {
		return l.Status == loan.StatusActive && l.DueDate != nil && l.DueDate.Before(t)
	}), nil
}

func (r *Loans) ListActiveDueBetween(_ context.Context, from, to time.Time) ([]loan.Loan, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(l loan.Loan) bool {
		return l.Status == loan.StatusActive && l.DueDate != nil &&
			!l.DueDate.Before(from) && !l.DueDate.After(to)
	}), nil
}

func (r *Loans) ListByParty(_ context.Context, userID string) ([]loan.Loan, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(l loan.Loan) bool { return l.HasParty(userID) }), nil
}

type History struct {
	s  *Store
	tx bool
}

func (r *History) Create(_ context.Context, h *trust.History) error {
	defer r.s.lock(r.tx)()
	if err := r.s.failure(); err != nil {
		return err
	}
	h.CreatedAt = r.s.tick()
	r.s.st.history = append(r.s.st.history, *h)
	return nil
}

func (r *History) filter(keep func(trust.History) bool) []trust.History {
	var out []trust.History
	for _, h := range r.s.st.history {
		if keep(h) {
			out = append(out, h)
		}
	}
	newestFirst(out, func(h trust.History) time.Time { return h.CreatedAt })
	return out
}

func (r *History) ListByUser(_ context.Context, userID string) ([]trust.History, error) {
	defer r.s.lock(r.tx)()
	return r.filter(func(h trust.History) bool { return h.UserID == userID }), nil
}

func (r *History) ListByLoan(_ context.Context, loanID string) ([]trust.History, error) {
	defer r.s.lock(r.tx)()
	return r.filter(func(h trust.History) bool { return h.LoanID != nil && *h.LoanID == loanID }), nil
}

type Documents struct {
	s  *Store
	tx bool
}

func (r *Documents) CreateMany(_ context.Context, docs []*document.Document) error {
	defer r.s.lock(r.tx)()
	if len(docs) == 0 {
		return nil
	}
	if err := r.s.failure(); err != nil {
		return err
	}
	for _, d := range docs {
		r.s.st.docs = append(r.s.st.docs, *d)
	}
	return nil
}

func (r *Documents) HasVerifiedIdentity(_ context.Context, userID string) (bool, error) {
	defer r.s.lock(r.tx)()
	for _, d := range r.s.st.docs {
		if d.UserID == userID && d.Status == document.StatusVerified && d.DocumentType.IsIdentity() {
			return true, nil
		}
	}
	return false, nil
}

// Notifications implements notification.Repository outside of transactions.
type Notifications struct{ s *Store }

func (r *Notifications) Create(_ context.Context, n *notification.Notification) error {
	defer r.s.lock(false)()
	if err := r.s.failure(); err != nil {
		return err
	}
	n.CreatedAt = r.s.tick()
	r.s.st.notifs[n.ID] = *n
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	defer r.s.lock(false)()
	var out []notification.Notification
	for _, n := range r.s.st.notifs {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	newestFirst(out, func(n notification.Notification) time.Time { return n.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Notifications) MarkRead(_ context.Context, id, userID string) (bool, error) {
	defer r.s.lock(false)()
	n, ok := r.s.st.notifs[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	now := time.Now().UTC()
	n.IsRead, n.ReadAt = true, &now
	r.s.st.notifs[id] = n
	return true, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	defer r.s.lock(false)()
	var count int64
	now := time.Now().UTC()
	for id, n := range r.s.st.notifs {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &now
			r.s.st.notifs[id] = n
			count++
		}
	}
	return count, nil
}

func (r *Notifications) SoftDelete(_ context.Context, id, userID string) (bool, error) {
	defer r.s.lock(false)()
	n, ok := r.s.st.notifs[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.s.st.notifs, id)
	return true, nil
}
