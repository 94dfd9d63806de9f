package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mess-backend/internal/logger"
	"mess-backend/internal/metrics"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/timeutil"
)

// Actor identifies the admin behind a mutation for the audit trail. A nil
// actor (student self-service) is not audited.
type Actor struct {
	AdminID int
	IP      string
}

type LedgerService struct {
	Ledger   *repositories.LedgerRepository
	Fees     *repositories.MonthlyFeeRepository
	Students *repositories.StudentRepository
	Audit    *repositories.AdminActionLogRepository

	now func() time.Time
}

func NewLedgerService(
	ledger *repositories.LedgerRepository,
	fees *repositories.MonthlyFeeRepository,
	students *repositories.StudentRepository,
	audit *repositories.AdminActionLogRepository,
) *LedgerService {
	return &LedgerService{
		Ledger:   ledger,
		Fees:     fees,
		Students: students,
		Audit:    audit,
		now:      timeutil.Now,
	}
}

// maxFeeAmount is the largest value a NUMERIC(10,2) fee column holds.
var maxFeeAmount = decimal.RequireFromString("99999999.99")

// ParseFeeAmount accepts a positive amount with at most two decimals.
func ParseFeeAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fee amount must be a number", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: fee amount must be positive", ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: fee amount has more than two decimals", ErrInvalidInput)
	}
	if amount.GreaterThan(maxFeeAmount) {
		return decimal.Zero, fmt.Errorf("%w: fee amount is too large", ErrInvalidInput)
	}
	return amount, nil
}

// IssueFee defines the fee for a period and marks every current student
// as owing it.
func (s *LedgerService) IssueFee(ctx context.Context, actor *Actor, period models.FeePeriod, rawAmount string) (*models.MonthlyFee, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrInvalidPeriod)
	}
	amount, err := ParseFeeAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	fee, err := s.Ledger.IssueFee(ctx, period, amount)
	if err != nil {
		return nil, fmt.Errorf("issue fee %s: %w", period, err)
	}

	metrics.FeesIssued.Inc()
	logger.For("ledger").Info().
		Str("period", period.String()).
		Str("amount", amount.StringFixed(2)).
		Int("pending_count", fee.PendingCount).
		Msg("fee issued")
	s.audit(ctx, actor, models.ActionFeeIssued, models.TargetMonthlyFee, fee.ID,
		fmt.Sprintf("Issued %s fee of %s to %d students", period, amount.StringFixed(2), fee.PendingCount))
	return fee, nil
}

// MarkPaid records a payment and returns the minted receipt number with
// the fee's counters after the update.
func (s *LedgerService) MarkPaid(ctx context.Context, actor *Actor, studentID int, period models.FeePeriod, rawMethod string) (*repositories.MarkPaidResult, error) {
	method, err := models.ParsePaymentMethod(rawMethod)
	if err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrInvalidPeriod)
	}

	res, err := s.Ledger.MarkPaid(ctx, studentID, period, method, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark paid %s for student %d: %w", period, studentID, err)
	}

	metrics.PaymentsRecorded.WithLabelValues(string(method)).Inc()
	logger.For("ledger").Info().
		Int("student_id", studentID).
		Str("period", period.String()).
		Str("method", string(method)).
		Int("receipt", res.ReceiptNumber).
		Msg("fee marked paid")
	s.audit(ctx, actor, models.ActionFeeMarkedPaid, models.TargetStudent, studentID,
		fmt.Sprintf("Marked %s paid (%s), receipt %d", period, method, res.ReceiptNumber))
	return res, nil
}

// RetractFee removes a fee definition and every student's entry for it.
func (s *LedgerService) RetractFee(ctx context.Context, actor *Actor, feeID int) (*models.MonthlyFee, error) {
	fee, err := s.Ledger.RetractFee(ctx, feeID)
	if err != nil {
		return nil, fmt.Errorf("retract fee %d: %w", feeID, err)
	}

	metrics.FeesRetracted.Inc()
	logger.For("ledger").Info().Int("fee_id", feeID).Str("period", fee.Period.String()).Msg("fee retracted")
	s.audit(ctx, actor, models.ActionFeeRetracted, models.TargetMonthlyFee, feeID,
		fmt.Sprintf("Deleted %s fee", fee.Period))
	return fee, nil
}

// RemoveStudent deletes a student and takes them off the pending count of
// every fee they still owed.
func (s *LedgerService) RemoveStudent(ctx context.Context, actor *Actor, studentID int) error {
	decremented, err := s.Ledger.RemoveStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("remove student %d: %w", studentID, err)
	}

	logger.For("ledger").Info().Int("student_id", studentID).Int("fees_decremented", decremented).Msg("student removed")
	s.audit(ctx, actor, models.ActionStudentDeleted, models.TargetStudent, studentID,
		fmt.Sprintf("Deleted student, %d pending fees released", decremented))
	return nil
}

// UpdateFeeAmount changes the amount of an already issued period.
func (s *LedgerService) UpdateFeeAmount(ctx context.Context, actor *Actor, period models.FeePeriod, rawAmount string) error {
	amount, err := ParseFeeAmount(rawAmount)
	if err != nil {
		return err
	}
	if err := s.Fees.UpdateAmount(ctx, period, amount); err != nil {
		return fmt.Errorf("update fee amount %s: %w", period, err)
	}
	s.audit(ctx, actor, models.ActionFeeAmountUpdated, models.TargetMonthlyFee, 0,
		fmt.Sprintf("Changed %s fee to %s", period, amount.StringFixed(2)))
	return nil
}

// FeeSummary lists every fee with its outstanding amount and the grand total.
func (s *LedgerService) FeeSummary(ctx context.Context) (*models.FeeSummary, error) {
	fees, err := s.Fees.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildFeeSummary(fees), nil
}

// StudentLedger returns the student with their status for every fee.
func (s *LedgerService) StudentLedger(ctx context.Context, studentID int) (*models.StudentLedger, error) {
	student, err := s.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fees, err := s.Fees.List(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.Ledger.EntriesForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return BuildStudentLedger(*student, fees, entries), nil
}

func (s *LedgerService) audit(ctx context.Context, actor *Actor, action, targetType string, targetID int, description string) {
	if actor == nil || s.Audit == nil {
		return
	}
	entry := &models.AdminActionLog{
		AdminID:     actor.AdminID,
		ActionType:  action,
		TargetType:  targetType,
		Description: description,
	}
	if targetID > 0 {
		entry.TargetID = &targetID
	}
	if actor.IP != "" {
		entry.IPAddress = &actor.IP
	}
	if err := s.Audit.CreateActionLog(ctx, entry); err != nil {
		logger.For("audit").Warn().Err(err).Str("action", action).Msg("failed to write action log")
	}
}
