package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one student's state for one issued fee. A missing entry
// means the fee was never issued to the student or has been retracted.
type LedgerEntry struct {
	StudentID     int             `json:"student_id"`
	FeeID         int             `json:"fee_id"`
	Period        FeePeriod       `json:"period"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	Pending       bool            `json:"pending"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty"`
	ReceiptNumber *int            `json:"receipt_number,omitempty"`
}

// StudentLedger is a student with every fee definition and that student's
// entry for it, if any.
type StudentLedger struct {
	Student Student          `json:"student"`
	Fees    []StudentFeeLine `json:"fees"`
}

type StudentFeeLine struct {
	Fee   MonthlyFee   `json:"fee"`
	Entry *LedgerEntry `json:"entry,omitempty"`
}

// Status is "Pending", "Paid" or "Not Applicable".
func (l StudentFeeLine) Status() string {
	switch {
	case l.Entry == nil:
		return "Not Applicable"
	case l.Entry.Pending:
		return "Pending"
	}
	return "Paid"
}

// PaymentRecord is a paid ledger entry joined with the student, used by the
// collection report.
type PaymentRecord struct {
	FullName      string          `json:"full_name"`
	Batch         int             `json:"batch"`
	RoomNumber    int             `json:"room_number"`
	MobileNumber  string          `json:"mobile_number"`
	Gender        string          `json:"gender"`
	Period        FeePeriod       `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// Receipt holds everything printed on a payment receipt.
type Receipt struct {
	Student       Student
	Period        FeePeriod
	Amount        decimal.Decimal
	ReceiptNumber int
	PaymentMethod PaymentMethod
	PaidAt        time.Time
}
