package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OnlinePaymentStatus string

const (
	OnlinePaymentCreated OnlinePaymentStatus = "created"
	OnlinePaymentPaid    OnlinePaymentStatus = "paid"
	OnlinePaymentFailed  OnlinePaymentStatus = "failed"

	// OnlinePaymentUnsettled means Razorpay captured the money but the
	// ledger entry was not settled. An admin has to reconcile it.
	OnlinePaymentUnsettled OnlinePaymentStatus = "unsettled"
)

// ParseOnlinePaymentStatus accepts one of the known statuses.
func ParseOnlinePaymentStatus(raw string) (OnlinePaymentStatus, bool) {
	switch s := OnlinePaymentStatus(raw); s {
	case OnlinePaymentCreated, OnlinePaymentPaid, OnlinePaymentFailed, OnlinePaymentUnsettled:
		return s, true
	}
	return "", false
}

// OnlinePayment tracks a Razorpay order raised by a student for one fee.
type OnlinePayment struct {
	ID          int                 `json:"id"`
	OrderID     string              `json:"order_id"`
	StudentID   int                 `json:"student_id"`
	StudentName string              `json:"student_name,omitempty"`
	FeeID       int                 `json:"fee_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Status      OnlinePaymentStatus `json:"status"`
	PaymentID   *string             `json:"payment_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CheckoutOrder is what the browser needs to open Razorpay checkout.
type CheckoutOrder struct {
	OrderID     string `json:"order_id"`
	KeyID       string `json:"key_id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	StudentName string `json:"student_name"`
	Mobile      string `json:"mobile"`
}
