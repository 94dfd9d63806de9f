package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mess-backend/internal/models"
)

// LedgerRepository owns the fee_ledger table. Every mutation that touches
// both a ledger row and the counters on monthly_fees runs in one transaction.
type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// MarkPaidResult reports the receipt minted for a payment and the fee
// counters after it.
type MarkPaidResult struct {
	FeeID             int
	ReceiptNumber     int
	PendingCount      int
	ReceiptsGenerated int
	PaidAt            time.Time
}

// IssueFee creates the fee for a period and a pending entry for every
// student. Returns ErrFeeExists when the period already has a fee.
func (r *LedgerRepository) IssueFee(ctx context.Context, p models.FeePeriod, amount decimal.Decimal) (*models.MonthlyFee, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	fee := &models.MonthlyFee{Period: p, FeeAmount: amount}
	err = tx.QueryRow(ctx, `
		INSERT INTO monthly_fees (month, year, fee_amount, pending_count)
		VALUES ($1, $2, $3::numeric, 0)
		ON CONFLICT (month, year) DO NOTHING
		RETURNING id, created_at`,
		int16(p.Month), p.Year, amount.String(),
	).Scan(&fee.ID, &fee.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeeExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert fee: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO fee_ledger (student_id, fee_id, pending) SELECT id, $1, TRUE FROM students`,
		fee.ID)
	if err != nil {
		return nil, fmt.Errorf("fan out pending entries: %w", err)
	}
	fee.PendingCount = int(tag.RowsAffected())

	if _, err := tx.Exec(ctx,
		`UPDATE monthly_fees SET pending_count = $2 WHERE id = $1`,
		fee.ID, fee.PendingCount); err != nil {
		return nil, fmt.Errorf("set pending count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return fee, nil
}

// MarkPaid settles one student's pending entry for a period and mints the
// next receipt number for that period. The fee row is locked so concurrent
// payments for the same period get distinct, consecutive receipts.
func (r *LedgerRepository) MarkPaid(ctx context.Context, studentID int, p models.FeePeriod, method models.PaymentMethod, paidAt time.Time) (*MarkPaidResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res := &MarkPaidResult{PaidAt: paidAt}
	var generated int
	err = tx.QueryRow(ctx,
		`SELECT id, receipts_generated FROM monthly_fees WHERE month = $1 AND year = $2 FOR UPDATE`,
		int16(p.Month), p.Year,
	).Scan(&res.FeeID, &generated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock fee: %w", err)
	}

	res.ReceiptNumber = generated + 1
	tag, err := tx.Exec(ctx, `
		UPDATE fee_ledger
		SET pending = FALSE, paid_at = $3, payment_method = $4, receipt_number = $5
		WHERE student_id = $1 AND fee_id = $2 AND pending`,
		studentID, res.FeeID, paidAt, string(method), res.ReceiptNumber)
	if err != nil {
		return nil, fmt.Errorf("settle entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLedgerEntryNotFound
	}

	err = tx.QueryRow(ctx, `
		UPDATE monthly_fees
		SET pending_count = pending_count - 1, receipts_generated = receipts_generated + 1
		WHERE id = $1
		RETURNING pending_count, receipts_generated`,
		res.FeeID,
	).Scan(&res.PendingCount, &res.ReceiptsGenerated)
	if err != nil {
		return nil, fmt.Errorf("update fee counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// RetractFee deletes a fee and every student's entry for it.
func (r *LedgerRepository) RetractFee(ctx context.Context, feeID int) (*models.MonthlyFee, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var fee models.MonthlyFee
	err = scanFee(tx.QueryRow(ctx, `SELECT `+feeColumns+` FROM monthly_fees f WHERE f.id = $1 FOR UPDATE`, feeID), &fee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock fee: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM fee_ledger WHERE fee_id = $1`, feeID); err != nil {
		return nil, fmt.Errorf("delete entries: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM monthly_fees WHERE id = $1`, feeID); err != nil {
		return nil, fmt.Errorf("delete fee: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &fee, nil
}

// RemoveStudent deletes a student after taking them off the pending count
// of every fee they still owe. Returns how many fees were decremented.
func (r *LedgerRepository) RemoveStudent(ctx context.Context, studentID int) (int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, studentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrStudentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock student: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE monthly_fees f
		SET pending_count = f.pending_count - 1
		FROM fee_ledger l
		WHERE l.fee_id = f.id AND l.student_id = $1 AND l.pending`,
		studentID)
	if err != nil {
		return 0, fmt.Errorf("decrement pending counts: %w", err)
	}
	decremented := int(tag.RowsAffected())

	if _, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return decremented, nil
}

// EntriesForStudent returns the student's entry for every fee they were issued.
func (r *LedgerRepository) EntriesForStudent(ctx context.Context, studentID int) ([]models.LedgerEntry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.student_id, l.fee_id, f.month, f.year, f.fee_amount::text,
			l.pending, l.paid_at, l.payment_method, l.receipt_number
		FROM fee_ledger l
		JOIN monthly_fees f ON f.id = l.fee_id
		WHERE l.student_id = $1
		ORDER BY f.year, f.month`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e      models.LedgerEntry
			month  int16
			amount string
			method *string
		)
		if err := rows.Scan(&e.StudentID, &e.FeeID, &month, &e.Period.Year, &amount,
			&e.Pending, &e.PaidAt, &method, &e.ReceiptNumber); err != nil {
			return nil, err
		}
		e.Period.Month = time.Month(month)
		if e.FeeAmount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		if method != nil {
			m := models.PaymentMethod(*method)
			e.PaymentMethod = &m
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PendingStudents lists students who still owe the fee, by room.
func (r *LedgerRepository) PendingStudents(ctx context.Context, feeID int) ([]models.Student, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students s
		JOIN fee_ledger l ON l.student_id = s.id
		WHERE l.fee_id = $1 AND l.pending
		ORDER BY s.room_number, s.id`, feeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// PaymentsBetween returns paid entries with paid_at in [from, to], by room.
func (r *LedgerRepository) PaymentsBetween(ctx context.Context, from, to time.Time) ([]models.PaymentRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.full_name, s.batch, s.room_number, s.mobile_number, s.gender,
			f.month, f.year, f.fee_amount::text, l.payment_method, l.paid_at
		FROM fee_ledger l
		JOIN students s ON s.id = l.student_id
		JOIN monthly_fees f ON f.id = l.fee_id
		WHERE NOT l.pending AND l.paid_at BETWEEN $1 AND $2
		ORDER BY s.room_number, l.paid_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PaymentRecord
	for rows.Next() {
		var (
			rec    models.PaymentRecord
			month  int16
			amount string
			method string
		)
		if err := rows.Scan(&rec.FullName, &rec.Batch, &rec.RoomNumber, &rec.MobileNumber, &rec.Gender,
			&month, &rec.Period.Year, &amount, &method, &rec.PaidAt); err != nil {
			return nil, err
		}
		rec.Period.Month = time.Month(month)
		rec.PaymentMethod = models.PaymentMethod(method)
		if rec.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PaidEntry returns the settled entry of a student for a fee, or
// ErrPaymentNotFound when it is missing or still pending.
func (r *LedgerRepository) PaidEntry(ctx context.Context, studentID, feeID int) (*models.LedgerEntry, error) {
	var (
		e      = models.LedgerEntry{StudentID: studentID, FeeID: feeID}
		method string
		paidAt time.Time
		number int
	)
	err := r.DB.QueryRow(ctx, `
		SELECT paid_at, payment_method, receipt_number
		FROM fee_ledger
		WHERE student_id = $1 AND fee_id = $2 AND NOT pending`,
		studentID, feeID,
	).Scan(&paidAt, &method, &number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	m := models.PaymentMethod(method)
	e.PaidAt, e.PaymentMethod, e.ReceiptNumber = &paidAt, &m, &number
	return &e, nil
}
