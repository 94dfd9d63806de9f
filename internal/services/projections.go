package services

import (
	"github.com/shopspring/decimal"

	"mess-backend/internal/models"
)

// BuildFeeSummary computes pending amounts per fee and their total.
func BuildFeeSummary(fees []models.MonthlyFee) *models.FeeSummary {
	total := decimal.Zero
	for i := range fees {
		total = total.Add(fees[i].PendingAmount())
	}
	return &models.FeeSummary{Fees: fees, GrandTotal: total}
}

// BuildStudentLedger pairs every fee with the student's entry, if issued.
func BuildStudentLedger(student models.Student, fees []models.MonthlyFee, entries []models.LedgerEntry) *models.StudentLedger {
	byFee := make(map[int]*models.LedgerEntry, len(entries))
	for i := range entries {
		byFee[entries[i].FeeID] = &entries[i]
	}

	lines := make([]models.StudentFeeLine, 0, len(fees))
	for _, f := range fees {
		lines = append(lines, models.StudentFeeLine{Fee: f, Entry: byFee[f.ID]})
	}
	return &models.StudentLedger{Student: student, Fees: lines}
}

type gendered interface {
	IsMale() bool
	IsFemale() bool
}

// SplitByGender partitions students into boys and girls, keeping order.
// Students with any other gender value appear in neither list.
func SplitByGender[T gendered](items []T) (boys, girls []T) {
	for _, it := range items {
		switch {
		case it.IsMale():
			boys = append(boys, it)
		case it.IsFemale():
			girls = append(girls, it)
		}
	}
	return boys, girls
}

// PaymentGroup is one sheet of the collection report.
type PaymentGroup struct {
	Method  models.PaymentMethod
	Gender  string
	Records []models.PaymentRecord
	Total   decimal.Decimal
}

// CollectionGroups buckets payments by method and gender in report order:
// online boys, cash boys, online girls, cash girls. Record order is kept.
func CollectionGroups(records []models.PaymentRecord) []PaymentGroup {
	groups := []PaymentGroup{
		{Method: models.PaymentOnline, Gender: models.GenderMale, Total: decimal.Zero},
		{Method: models.PaymentCash, Gender: models.GenderMale, Total: decimal.Zero},
		{Method: models.PaymentOnline, Gender: models.GenderFemale, Total: decimal.Zero},
		{Method: models.PaymentCash, Gender: models.GenderFemale, Total: decimal.Zero},
	}
	for _, rec := range records {
		for i := range groups {
			g := &groups[i]
			if rec.PaymentMethod == g.Method && equalFoldGender(rec.Gender, g.Gender) {
				g.Records = append(g.Records, rec)
				g.Total = g.Total.Add(rec.Amount)
				break
			}
		}
	}
	return groups
}

func equalFoldGender(a, b string) bool {
	return models.NormalizeGender(a) == models.NormalizeGender(b)
}
