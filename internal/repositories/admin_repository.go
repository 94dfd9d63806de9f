package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mess-backend/internal/models"
)

type AdminRepository struct {
	DB *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) scanOne(row pgx.Row) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.TOTPSecret, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) Get(ctx context.Context, id int) (*models.Admin, error) {
	return r.scanOne(r.DB.QueryRow(ctx,
		`SELECT id, username, password_hash, totp_secret, created_at FROM admins WHERE id = $1`, id))
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.scanOne(r.DB.QueryRow(ctx,
		`SELECT id, username, password_hash, totp_secret, created_at FROM admins WHERE username = $1`, username))
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO admins (username, password_hash, totp_secret)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		a.Username, a.PasswordHash, a.TOTPSecret,
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *AdminRepository) SetTOTPSecret(ctx context.Context, id int, secret *string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE admins SET totp_secret = $2 WHERE id = $1`, id, secret)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}
