package notification

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const currency = "RWF"

func rwf(d decimal.Decimal) string { return d.Round(2).String() + " " + currency }

func day(t time.Time) string { return t.Format("2006-01-02") }

func OfferCreated(borrowerID, lenderName string, amount decimal.Decimal, offerID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeLoanOffer,
		Title:  "New Loan Offer Received",
		Body:   fmt.Sprintf("%s has offered you %s for your loan request. Review and accept the offer if interested.", lenderName, rwf(amount)),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "offerId": offerID},
	}
}

func OfferDeclined(lenderID string, amount decimal.Decimal, offerID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeLoanOffer,
		Title:  "Loan Offer Declined",
		Body:   fmt.Sprintf("Your loan offer of %s was declined.", rwf(amount)),
		Data:   map[string]any{"amount": amount.InexactFloat64(), "offerId": offerID},
	}
}

func OfferAcceptedBorrower(borrowerID, lenderName string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeLoanApproved,
		Title:  "Loan Offer Accepted",
		Body:   fmt.Sprintf("You have successfully accepted the loan offer of %s from %s. Waiting for lender to sign.", rwf(amount), lenderName),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func OfferAcceptedLender(lenderID, borrowerName string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeLoanOffer,
		Title:  "Your Offer Accepted",
		Body:   fmt.Sprintf("%s has accepted your loan offer of %s. Please review and sign to activate the loan.", borrowerName, rwf(amount)),
		Data:   map[string]any{"borrowerName": borrowerName, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func LoanSignedBorrower(borrowerID, lenderName string, amount decimal.Decimal, due time.Time, loanID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeLoanDisbursed,
		Title:  "Loan Activated",
		Body:   fmt.Sprintf("%s has signed the loan agreement. Your loan of %s is now active and due on %s.", lenderName, rwf(amount), day(due)),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "dueDate": due, "loanId": loanID},
	}
}

func LoanSignedLender(lenderID, borrowerName string, amount decimal.Decimal, due time.Time, loanID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeLoanDisbursed,
		Title:  "Loan Activated",
		Body:   fmt.Sprintf("You have signed the loan with %s. The loan of %s is now active and due on %s.", borrowerName, rwf(amount), day(due)),
		Data:   map[string]any{"borrowerName": borrowerName, "amount": amount.InexactFloat64(), "dueDate": due, "loanId": loanID},
	}
}

func PaymentDueSoonBorrower(borrowerID, lenderName string, amount decimal.Decimal, days int, loanID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeRepaymentReminder,
		Title:  "Payment Due Soon",
		Body:   fmt.Sprintf("Your loan payment of %s to %s is due in %d days.", rwf(amount), lenderName, days),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "daysUntilDue": days, "loanId": loanID},
	}
}

func PaymentDueSoonLender(lenderID, borrowerName string, amount decimal.Decimal, days int, loanID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeRepaymentReminder,
		Title:  "Payment Due Soon",
		Body:   fmt.Sprintf("Your loan to %s of %s is due in %d days.", borrowerName, rwf(amount), days),
		Data:   map[string]any{"borrowerName": borrowerName, "amount": amount.InexactFloat64(), "daysUntilDue": days, "loanId": loanID},
	}
}

func PaymentClaimed(lenderID, borrowerName string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeRepaymentReceived,
		Title:  "Payment Confirmation Required",
		Body:   fmt.Sprintf("%s claims to have paid %s. Please confirm if you received the payment.", borrowerName, rwf(amount)),
		Data:   map[string]any{"borrowerName": borrowerName, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func PaymentConfirmed(borrowerID, lenderName string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeRepaymentReceived,
		Title:  "Payment Confirmed - Loan Complete",
		Body:   fmt.Sprintf("%s confirmed receipt of %s. Your loan has been marked as REPAID. Thank you!", lenderName, rwf(amount)),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func LoanOverdueBorrower(borrowerID, lenderName string, amount decimal.Decimal, daysOverdue int, loanID string) Message {
	return Message{
		UserID: borrowerID,
		Type:   TypeLoanOverdue,
		Title:  "Loan Payment Overdue",
		Body:   fmt.Sprintf("Your loan payment of %s to %s is %d days overdue. Please pay immediately.", rwf(amount), lenderName, daysOverdue),
		Data:   map[string]any{"lenderName": lenderName, "amount": amount.InexactFloat64(), "daysOverdue": daysOverdue, "loanId": loanID},
	}
}

func LoanOverdueLender(lenderID, borrowerName string, amount decimal.Decimal, daysOverdue int, loanID string) Message {
	return Message{
		UserID: lenderID,
		Type:   TypeLoanOverdue,
		Title:  "Loan Payment Overdue",
		Body:   fmt.Sprintf("The loan to %s of %s is %d days overdue.", borrowerName, rwf(amount), daysOverdue),
		Data:   map[string]any{"borrowerName": borrowerName, "amount": amount.InexactFloat64(), "daysOverdue": daysOverdue, "loanId": loanID},
	}
}

func LoanDefaulted(userID, loanNumber string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: userID,
		Type:   TypeLoanDefaulted,
		Title:  "Loan Defaulted",
		Body:   fmt.Sprintf("Loan %s of %s has been marked as DEFAULTED.", loanNumber, rwf(amount)),
		Data:   map[string]any{"loanNumber": loanNumber, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func LoanCancelled(userID, loanNumber string, amount decimal.Decimal, loanID string) Message {
	return Message{
		UserID: userID,
		Type:   TypeLoanCancelled,
		Title:  "Loan Cancelled",
		Body:   fmt.Sprintf("Loan %s of %s has been cancelled.", loanNumber, rwf(amount)),
		Data:   map[string]any{"loanNumber": loanNumber, "amount": amount.InexactFloat64(), "loanId": loanID},
	}
}

func TrustScoreChanged(userID string, oldScore, newScore int, reason string) Message {
	return Message{
		UserID: userID,
		Type:   TypeTrustScore,
		Title:  "Trust Score Updated",
		Body:   fmt.Sprintf("Your trust score changed from %d to %d (%s).", oldScore, newScore, reason),
		Data:   map[string]any{"oldScore": oldScore, "newScore": newScore, "reason": reason},
	}
}
