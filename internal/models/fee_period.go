package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinFeeYear = 2000
	MaxFeeYear = 2100
)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidPeriod = errors.New("invalid fee period")
)

// FeePeriod identifies one billing month. It replaces the free-form
// "Month Year" string keys of the old ledger.
type FeePeriod struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// NewFeePeriod builds a period from a month name (or number) and year.
func NewFeePeriod(month string, year int) (FeePeriod, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return FeePeriod{}, err
	}
	p := FeePeriod{Month: m, Year: year}
	if !p.Valid() {
		return FeePeriod{}, ErrInvalidYear
	}
	return p, nil
}

// ParseFeePeriod parses the display form, e.g. "January 2024".
func ParseFeePeriod(s string) (FeePeriod, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return FeePeriod{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return FeePeriod{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return NewFeePeriod(fields[0], year)
}

// ParseMonth accepts a full English month name in any case or a number 1-12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, ErrInvalidMonth
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, ErrInvalidMonth
}

func (p FeePeriod) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December &&
		p.Year >= MinFeeYear && p.Year <= MaxFeeYear
}

func (p FeePeriod) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// MonthNames lists January..December for form dropdowns.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}
