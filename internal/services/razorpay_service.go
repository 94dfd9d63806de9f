package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"mess-backend/internal/config"
	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/timeutil"
)

// RazorpayService lets students pay a pending month online. A verified
// payment settles the ledger entry with method Online.
type RazorpayService struct {
	Students *repositories.StudentRepository
	Fees     *repositories.MonthlyFeeRepository
	Ledger   *repositories.LedgerRepository
	Payments *repositories.OnlinePaymentRepository
	Settle   *LedgerService

	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpayService(
	cfg *config.Config,
	students *repositories.StudentRepository,
	fees *repositories.MonthlyFeeRepository,
	ledger *repositories.LedgerRepository,
	payments *repositories.OnlinePaymentRepository,
	settle *LedgerService,
) *RazorpayService {
	s := &RazorpayService{
		Students:  students,
		Fees:      fees,
		Ledger:    ledger,
		Payments:  payments,
		Settle:    settle,
		keyID:     cfg.Razorpay.KeyID,
		keySecret: cfg.Razorpay.KeySecret,
	}
	if cfg.RazorpayEnabled() {
		s.client = razorpay.NewClient(s.keyID, s.keySecret)
	}
	return s
}

func (s *RazorpayService) IsEnabled() bool {
	return s != nil && s.client != nil
}

// CreateOrder opens a Razorpay order for the student's pending period.
func (s *RazorpayService) CreateOrder(ctx context.Context, studentID int, period models.FeePeriod) (*models.CheckoutOrder, error) {
	if !s.IsEnabled() {
		return nil, ErrOnlinePaymentsOff
	}

	student, err := s.Students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	fee, err := s.Fees.GetByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePending(ctx, studentID, fee.ID); err != nil {
		return nil, err
	}

	paise := fee.FeeAmount.Mul(decimal.NewFromInt(100)).IntPart()
	orderData := map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("mess_%d_%d_%d", studentID, fee.ID, timeutil.Now().Unix()),
		"notes": map[string]interface{}{
			"student_id": studentID,
			"period":     period.String(),
		},
	}

	order, err := s.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}

	if err := s.Payments.Create(ctx, &models.OnlinePayment{
		OrderID:   orderID,
		StudentID: studentID,
		FeeID:     fee.ID,
		Amount:    fee.FeeAmount,
		Status:    models.OnlinePaymentCreated,
	}); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	return &models.CheckoutOrder{
		OrderID:     orderID,
		KeyID:       s.keyID,
		AmountPaise: paise,
		Currency:    "INR",
		Description: "Mess fee " + period.String(),
		StudentName: student.FullName,
		Mobile:      student.MobileNumber,
	}, nil
}

func (s *RazorpayService) ensurePending(ctx context.Context, studentID, feeID int) error {
	entries, err := s.Ledger.EntriesForStudent(ctx, studentID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.FeeID == feeID && e.Pending {
			return nil
		}
	}
	return ErrLedgerEntryNotFound
}

// VerifyPayment checks the checkout signature and settles the fee. The
// order is marked paid only after the ledger entry is settled. A captured
// payment that cannot be settled is left as unsettled for an admin.
func (s *RazorpayService) VerifyPayment(ctx context.Context, studentID int, orderID, paymentID, signature string) (*repositories.MarkPaidResult, error) {
	if !s.IsEnabled() {
		return nil, ErrOnlinePaymentsOff
	}

	payment, err := s.Payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment.StudentID != studentID {
		return nil, repositories.ErrOrderNotFound
	}
	if payment.Status == models.OnlinePaymentPaid || payment.Status == models.OnlinePaymentUnsettled {
		return nil, fmt.Errorf("%w: order %s already processed", ErrLedgerEntryNotFound, orderID)
	}

	if !VerifySignature(s.keySecret, orderID, paymentID, signature) {
		_ = s.Payments.UpdateStatus(ctx, orderID, models.OnlinePaymentFailed, nil)
		return nil, ErrSignatureMismatch
	}

	res, err := s.settle(ctx, studentID, payment.FeeID)
	if err != nil {
		logger.For("razorpay").Error().Err(err).
			Str("order_id", orderID).Str("payment_id", paymentID).
			Msg("payment captured but ledger not settled")
		if uerr := s.Payments.UpdateStatus(ctx, orderID, models.OnlinePaymentUnsettled, &paymentID); uerr != nil {
			logger.For("razorpay").Error().Err(uerr).Str("order_id", orderID).Msg("failed to flag unsettled order")
		}
		return nil, err
	}

	if err := s.Payments.UpdateStatus(ctx, orderID, models.OnlinePaymentPaid, &paymentID); err != nil {
		// The ledger is already settled; the order row only lags behind.
		logger.For("razorpay").Warn().Err(err).Str("order_id", orderID).Msg("failed to mark order paid")
	}
	return res, nil
}

func (s *RazorpayService) settle(ctx context.Context, studentID, feeID int) (*repositories.MarkPaidResult, error) {
	fee, err := s.Fees.Get(ctx, feeID)
	if err != nil {
		return nil, err
	}
	return s.Settle.MarkPaid(ctx, nil, studentID, fee.Period, string(models.PaymentOnline))
}

// VerifySignature checks Razorpay's HMAC-SHA256 over "order_id|payment_id".
func VerifySignature(keySecret, orderID, paymentID, signature string) bool {
	if keySecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
