package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{40, "Forty"},
		{99, "Ninety Nine"},
		{100, "One Hundred"},
		{1500, "One Thousand Five Hundred"},
		{2350, "Two Thousand Three Hundred Fifty"},
		{100000, "One Lakh"},
		{1234567, "Twelve Lakh Thirty Four Thousand Five Hundred Sixty Seven"},
		{10000000, "One Crore"},
		{250000001, "Twenty Five Crore One"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToWords(tt.n), "n=%d", tt.n)
	}
}

func TestRupeesInWords(t *testing.T) {
	assert.Equal(t, "One Thousand Five Hundred Rupees Only",
		RupeesInWords(decimal.RequireFromString("1500")))
	assert.Equal(t, "One Thousand Five Hundred Rupees And Fifty Paise Only",
		RupeesInWords(decimal.RequireFromString("1500.50")))
	assert.Equal(t, "Two Thousand Rupees And Five Paise Only",
		RupeesInWords(decimal.RequireFromString("2000.05")))
}
