package services

import (
	"errors"

	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
)

// Errors callers match with errors.Is. Storage errors are re-exported so
// handlers do not depend on the repositories package.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPaymentMethod = models.ErrInvalidPaymentMethod
	ErrStudentNotFound      = repositories.ErrStudentNotFound
	ErrFeeNotFound          = repositories.ErrFeeNotFound
	ErrFeeExists            = repositories.ErrFeeExists
	ErrLedgerEntryNotFound  = repositories.ErrLedgerEntryNotFound
	ErrPaymentNotFound      = repositories.ErrPaymentNotFound
	ErrUsernameTaken        = repositories.ErrUsernameTaken
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTooManyAttempts      = errors.New("too many failed login attempts, try again later")
	ErrTOTPRequired         = errors.New("authenticator code required")
	ErrOnlinePaymentsOff    = errors.New("online payments are not configured")
	ErrSignatureMismatch    = errors.New("payment signature verification failed")
	ErrNoPendingStudents    = errors.New("no pending fees for the specified month and year")
)

// IsNotFound reports whether err is one of the not-found conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrFeeNotFound) ||
		errors.Is(err, ErrLedgerEntryNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrNoPendingStudents) ||
		errors.Is(err, repositories.ErrOrderNotFound)
}

// IsInvalidInput reports whether err should surface as a 400.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, models.ErrInvalidMonth) ||
		errors.Is(err, models.ErrInvalidYear) ||
		errors.Is(err, models.ErrInvalidPeriod)
}
