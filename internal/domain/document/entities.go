package document

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeNationalID     Type = "NATIONAL_ID"
	TypePassport       Type = "PASSPORT"
	TypeProofOfIncome  Type = "PROOF_OF_INCOME"
	TypeProofOfAddress Type = "PROOF_OF_ADDRESS"
	TypeOther          Type = "OTHER"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeNationalID, TypePassport, TypeProofOfIncome, TypeProofOfAddress, TypeOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// IsIdentity reports whether a verified document of this type proves identity.
func (t Type) IsIdentity() bool { return t == TypeNationalID || t == TypePassport }

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
)

// Document is a verification document uploaded by a user.
type Document struct {
	ID           string         `gorm:"primaryKey;size:32"`
	UserID       string         `gorm:"size:32;not null;index"`
	LoanOfferID  *string        `gorm:"size:32;index"`
	DocumentType Type           `gorm:"size:32;not null"`
	DocumentURL  string         `gorm:"type:text;not null"`
	Status       Status         `gorm:"size:16;not null;default:'PENDING'"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string { return "verification_documents" }
