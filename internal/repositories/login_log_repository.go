package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mess-backend/internal/models"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

// CreateLoginLog records a successful login
func (r *LoginLogRepository) CreateLoginLog(ctx context.Context, log *models.LoginLog) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO login_logs (principal_type, principal_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, login_time`,
		log.PrincipalType, log.PrincipalID, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.LoginTime)
}

// RecordLogout closes the principal's most recent open session log.
func (r *LoginLogRepository) RecordLogout(ctx context.Context, principalType string, principalID int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE login_logs SET logout_time = NOW()
		WHERE id = (
			SELECT id FROM login_logs
			WHERE principal_type = $1 AND principal_id = $2 AND logout_time IS NULL
			ORDER BY login_time DESC
			LIMIT 1
		)`, principalType, principalID)
	return err
}

// ListRecent returns the newest login records, newest first.
func (r *LoginLogRepository) ListRecent(ctx context.Context, limit int) ([]models.LoginLog, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, principal_type, principal_id, login_time, logout_time,
			COALESCE(ip_address, ''), COALESCE(user_agent, '')
		FROM login_logs
		ORDER BY login_time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.LoginLog{}
	for rows.Next() {
		var l models.LoginLog
		if err := rows.Scan(&l.ID, &l.PrincipalType, &l.PrincipalID, &l.LoginTime,
			&l.LogoutTime, &l.IPAddress, &l.UserAgent); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
