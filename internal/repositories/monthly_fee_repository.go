package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mess-backend/internal/models"
)

type MonthlyFeeRepository struct {
	DB *pgxpool.Pool
}

func NewMonthlyFeeRepository(db *pgxpool.Pool) *MonthlyFeeRepository {
	return &MonthlyFeeRepository{DB: db}
}

const feeColumns = `f.id, f.month, f.year, f.fee_amount::text, f.pending_count, f.receipts_generated, f.created_at`

func scanFee(row pgx.Row, f *models.MonthlyFee) error {
	var (
		month  int16
		amount string
	)
	if err := row.Scan(&f.ID, &month, &f.Period.Year, &amount,
		&f.PendingCount, &f.ReceiptsGenerated, &f.CreatedAt); err != nil {
		return err
	}
	f.Period.Month = time.Month(month)
	d, err := parseDecimal(amount)
	if err != nil {
		return err
	}
	f.FeeAmount = d
	return nil
}

// List returns all fee definitions, oldest period first.
func (r *MonthlyFeeRepository) List(ctx context.Context) ([]models.MonthlyFee, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+feeColumns+` FROM monthly_fees f ORDER BY f.year, f.month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []models.MonthlyFee
	for rows.Next() {
		var f models.MonthlyFee
		if err := scanFee(rows, &f); err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

func (r *MonthlyFeeRepository) Get(ctx context.Context, id int) (*models.MonthlyFee, error) {
	var f models.MonthlyFee
	err := scanFee(r.DB.QueryRow(ctx, `SELECT `+feeColumns+` FROM monthly_fees f WHERE f.id = $1`, id), &f)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *MonthlyFeeRepository) GetByPeriod(ctx context.Context, p models.FeePeriod) (*models.MonthlyFee, error) {
	var f models.MonthlyFee
	err := scanFee(r.DB.QueryRow(ctx,
		`SELECT `+feeColumns+` FROM monthly_fees f WHERE f.month = $1 AND f.year = $2`,
		int16(p.Month), p.Year), &f)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateAmount changes the amount of an issued fee. Entries already paid
// keep pointing at the fee, so receipts reprinted later show the new amount.
func (r *MonthlyFeeRepository) UpdateAmount(ctx context.Context, p models.FeePeriod, amount decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE monthly_fees SET fee_amount = $3::numeric WHERE month = $1 AND year = $2`,
		int16(p.Month), p.Year, amount.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFeeNotFound
	}
	return nil
}
