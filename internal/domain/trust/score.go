package trust

import (
	"microlend/internal/domain/loan"
	"microlend/internal/domain/user"
)

type Reason string

const (
	ReasonRepaidEarly          Reason = "LOAN_REPAID_EARLY"
	ReasonRepaidOnTime         Reason = "LOAN_REPAID_ON_TIME"
	ReasonRepaidSlightlyLate   Reason = "LOAN_REPAID_SLIGHTLY_LATE"
	ReasonRepaidModeratelyLate Reason = "LOAN_REPAID_MODERATELY_LATE"
	ReasonRepaidVeryLate       Reason = "LOAN_REPAID_VERY_LATE"
	ReasonDefaulted            Reason = "LOAN_DEFAULTED"
	ReasonOverdue              Reason = "LOAN_OVERDUE"
	ReasonCancelled            Reason = "LOAN_CANCELLED"
	ReasonManualAdjustment     Reason = "MANUAL_ADJUSTMENT"
)

const (
	MinScore = 0
	MaxScore = 100
)

// ScoreChange maps a loan outcome and its lateness to a score delta.
func ScoreChange(status loan.Status, lateDays int) int {
	switch status {
	case loan.StatusRepaid:
		switch {
		case lateDays < 0:
			return 15
		case lateDays == 0:
			return 10
		case lateDays <= 3:
			return 5
		case lateDays <= 7:
			return 2
		default:
			return -5
		}
	case loan.StatusDefaulted:
		return -20
	case loan.StatusOverdue:
		switch {
		case lateDays <= 7:
			return -3
		case lateDays <= 15:
			return -5
		default:
			return -10
		}
	case loan.StatusCancelled:
		return -2
	}
	return 0
}

// ReasonFor uses the same buckets as ScoreChange.
func ReasonFor(status loan.Status, lateDays int) Reason {
	switch status {
	case loan.StatusRepaid:
		switch {
		case lateDays < 0:
			return ReasonRepaidEarly
		case lateDays == 0:
			return ReasonRepaidOnTime
		case lateDays <= 3:
			return ReasonRepaidSlightlyLate
		case lateDays <= 7:
			return ReasonRepaidModeratelyLate
		default:
			return ReasonRepaidVeryLate
		}
	case loan.StatusDefaulted:
		return ReasonDefaulted
	case loan.StatusOverdue:
		return ReasonOverdue
	case loan.StatusCancelled:
		return ReasonCancelled
	}
	return ReasonManualAdjustment
}

func DetermineCategory(score int) user.Category {
	switch {
	case score >= 85:
		return user.CategoryExcellent
	case score >= 70:
		return user.CategoryGood
	case score >= 55:
		return user.CategoryTrustable
	case score >= 40:
		return user.CategoryModerate
	case score >= 25:
		return user.CategoryRisky
	default:
		return user.CategoryDefault
	}
}

func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
