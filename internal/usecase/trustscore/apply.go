package trustscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"microlend/internal/domain/errs"
	"microlend/internal/domain/loan"
	"microlend/internal/domain/notification"
	"microlend/internal/domain/trust"
	"microlend/internal/domain/uow"
	"microlend/internal/domain/user"
	"microlend/internal/infrastructure/metrics"
	"microlend/pkg/id"
)

// Outcome is a score-affecting loan event.
type Outcome struct {
	UserID   string
	LoanID   string
	Status   loan.Status
	LateDays int
	Metadata map[string]any
}

// Change describes a committed score update.
type Change struct {
	UserID   string
	LoanID   string
	OldScore int
	NewScore int
	Delta    int
	Category user.Category
	Reason   trust.Reason
}

// Apply updates the user's score and category and appends one history row.
// It must run inside the caller's transaction; r is bound to it.
func Apply(ctx context.Context, r uow.Repos, o Outcome) (*Change, error) {
	u, err := r.Users.GetByIDForUpdate(ctx, o.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	newScore := trust.Clamp(u.TrustScore + trust.ScoreChange(o.Status, o.LateDays))
	c := &Change{
		UserID:   o.UserID,
		LoanID:   o.LoanID,
		OldScore: u.TrustScore,
		NewScore: newScore,
		Delta:    newScore - u.TrustScore,
		Category: trust.DetermineCategory(newScore),
		Reason:   trust.ReasonFor(o.Status, o.LateDays),
	}

	if err := r.Users.UpdateScore(ctx, o.UserID, c.NewScore, c.Category); err != nil {
		return nil, fmt.Errorf("update score: %w", err)
	}

	meta := map[string]any{"status": o.Status, "lateDays": o.LateDays}
	for k, v := range o.Metadata {
		meta[k] = v
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode score metadata: %w", err)
	}

	h := &trust.History{
		ID:       id.NewID32(),
		UserID:   o.UserID,
		OldScore: c.OldScore,
		NewScore: c.NewScore,
		Change:   c.Delta,
		Reason:   c.Reason,
		Metadata: raw,
	}
	if o.LoanID != "" {
		loanID := o.LoanID
		h.LoanID = &loanID
	}
	if err := r.Trust.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("append score history: %w", err)
	}
	return c, nil
}

// Observe records the change in metrics. Call it after commit.
func (c *Change) Observe() {
	metrics.TrustScoreChanges.WithLabelValues(string(c.Reason)).Inc()
}

func (c *Change) Message() notification.Message {
	return notification.TrustScoreChanged(c.UserID, c.OldScore, c.NewScore, string(c.Reason))
}
