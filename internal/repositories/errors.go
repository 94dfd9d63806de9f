package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrFeeNotFound         = errors.New("monthly fee not found")
	ErrFeeExists           = errors.New("fees for this month already exist")
	ErrLedgerEntryNotFound = errors.New("no pending fee for student")
	ErrPaymentNotFound     = errors.New("no payment recorded")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrOrderNotFound       = errors.New("online payment order not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// parseDecimal reads NUMERIC columns selected as ::text.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// likePattern escapes LIKE wildcards in user input and wraps it for substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
