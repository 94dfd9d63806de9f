package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyFee is the fee definition for one period. PendingCount tracks how
// many students still owe it; ReceiptsGenerated mints receipt numbers and
// never goes down.
type MonthlyFee struct {
	ID                int             `json:"id"`
	Period            FeePeriod       `json:"period"`
	FeeAmount         decimal.Decimal `json:"fee_amount"`
	PendingCount      int             `json:"pending_count"`
	ReceiptsGenerated int             `json:"receipts_generated"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (f *MonthlyFee) PendingAmount() decimal.Decimal {
	return f.FeeAmount.Mul(decimal.NewFromInt(int64(f.PendingCount)))
}

// FeeSummary is the add-fees page projection.
type FeeSummary struct {
	Fees       []MonthlyFee    `json:"fees"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}
