package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mess-backend/internal/models"
)

type OnlinePaymentRepository struct {
	DB *pgxpool.Pool
}

func NewOnlinePaymentRepository(db *pgxpool.Pool) *OnlinePaymentRepository {
	return &OnlinePaymentRepository{DB: db}
}

func (r *OnlinePaymentRepository) Create(ctx context.Context, p *models.OnlinePayment) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO online_payments (order_id, student_id, fee_id, amount, status)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING id, created_at, updated_at`,
		p.OrderID, p.StudentID, p.FeeID, p.Amount.String(), string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *OnlinePaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlinePayment, error) {
	var (
		p      models.OnlinePayment
		amount string
		status string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_id, student_id, fee_id, amount::text, status, payment_id, created_at, updated_at
		FROM online_payments WHERE order_id = $1`, orderID,
	).Scan(&p.ID, &p.OrderID, &p.StudentID, &p.FeeID, &amount, &status, &p.PaymentID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = models.OnlinePaymentStatus(status)
	if p.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *OnlinePaymentRepository) UpdateStatus(ctx context.Context, orderID string, status models.OnlinePaymentStatus, paymentID *string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE online_payments SET status = $2, payment_id = COALESCE($3, payment_id), updated_at = NOW()
		WHERE order_id = $1`, orderID, string(status), paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// List returns recent orders, newest first. An empty status lists all.
func (r *OnlinePaymentRepository) List(ctx context.Context, status models.OnlinePaymentStatus, limit int) ([]models.OnlinePayment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.order_id, p.student_id, s.full_name, p.fee_id, p.amount::text,
		       p.status, p.payment_id, p.created_at, p.updated_at
		FROM online_payments p
		JOIN students s ON s.id = p.student_id
		WHERE $1 = '' OR p.status = $1
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT $2`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OnlinePayment
	for rows.Next() {
		var (
			p      models.OnlinePayment
			amount string
			status string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.StudentID, &p.StudentName, &p.FeeID, &amount,
			&status, &p.PaymentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = models.OnlinePaymentStatus(status)
		if p.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
