package trust

import (
	"encoding/json"
	"time"
)

// History is append-only: one row per score-affecting loan transition.
type History struct {
	ID       string          `gorm:"primaryKey;size:32"`
	UserID   string          `gorm:"size:32;not null;index"`
	LoanID   *string         `gorm:"size:32;index"`
	OldScore int             `gorm:"not null"`
	NewScore int             `gorm:"not null"`
	Change   int             `gorm:"not null"`
	Reason   Reason          `gorm:"size:48;not null"`
	Metadata json.RawMessage `gorm:"type:json"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (History) TableName() string { return "trust_score_history" }
