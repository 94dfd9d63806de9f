package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
	}{
		{"January", time.January},
		{"january", time.January},
		{"  DECEMBER ", time.December},
		{"3", time.March},
		{"12", time.December},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "Jan", "0", "13", "Smarch"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, bad)
	}
}

func TestNewFeePeriod(t *testing.T) {
	p, err := NewFeePeriod("January", 2024)
	require.NoError(t, err)
	assert.Equal(t, FeePeriod{Month: time.January, Year: 2024}, p)
	assert.Equal(t, "January 2024", p.String())

	_, err = NewFeePeriod("January", 1999)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = NewFeePeriod("Janvier", 2024)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestParseFeePeriod(t *testing.T) {
	p, err := ParseFeePeriod("March 2025")
	require.NoError(t, err)
	assert.Equal(t, FeePeriod{Month: time.March, Year: 2025}, p)

	for _, bad := range []string{"", "March", "March twenty", "March 2025 extra"} {
		_, err := ParseFeePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestFeePeriodValid(t *testing.T) {
	assert.True(t, FeePeriod{Month: time.June, Year: MinFeeYear}.Valid())
	assert.True(t, FeePeriod{Month: time.June, Year: MaxFeeYear}.Valid())
	assert.False(t, FeePeriod{Month: 0, Year: 2024}.Valid())
	assert.False(t, FeePeriod{Month: 13, Year: 2024}.Valid())
	assert.False(t, FeePeriod{Month: time.June, Year: MaxFeeYear + 1}.Valid())
}

func TestMonthNames(t *testing.T) {
	names := MonthNames()
	require.Len(t, names, 12)
	assert.Equal(t, "January", names[0])
	assert.Equal(t, "December", names[11])
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("Online")
	require.NoError(t, err)
	assert.Equal(t, PaymentOnline, m)

	m, err = ParsePaymentMethod("Cash")
	require.NoError(t, err)
	assert.Equal(t, PaymentCash, m)

	for _, bad := range []string{"", "cash", "ONLINE", "Cheque"} {
		_, err := ParsePaymentMethod(bad)
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod, bad)
	}
}

func TestStudentFeeLineStatus(t *testing.T) {
	assert.Equal(t, "Not Applicable", StudentFeeLine{}.Status())
	assert.Equal(t, "Pending", StudentFeeLine{Entry: &LedgerEntry{Pending: true}}.Status())
	assert.Equal(t, "Paid", StudentFeeLine{Entry: &LedgerEntry{Pending: false}}.Status())
}

func TestNormalizeGender(t *testing.T) {
	assert.Equal(t, GenderMale, NormalizeGender(" male "))
	assert.Equal(t, GenderFemale, NormalizeGender("FEMALE"))
	assert.Equal(t, "Other", NormalizeGender("Other"))
}
