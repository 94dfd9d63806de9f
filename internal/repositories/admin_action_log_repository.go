package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mess-backend/internal/models"
)

type AdminActionLogRepository struct {
	DB *pgxpool.Pool
}

func NewAdminActionLogRepository(db *pgxpool.Pool) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: db}
}

// CreateActionLog records an admin action
func (r *AdminActionLogRepository) CreateActionLog(ctx context.Context, log *models.AdminActionLog) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO admin_action_logs (
			admin_id, action_type, target_type, target_id, description, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		log.AdminID, log.ActionType, log.TargetType, log.TargetID,
		log.Description, log.IPAddress,
	)
	return err
}

// ListRecent returns the newest action logs with the admin's username.
func (r *AdminActionLogRepository) ListRecent(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT al.id, al.admin_id, a.username, al.action_type, al.target_type,
			al.target_id, al.description, al.ip_address, al.created_at
		FROM admin_action_logs al
		JOIN admins a ON a.id = al.admin_id
		ORDER BY al.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AdminActionLog{}
	for rows.Next() {
		var l models.AdminActionLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.AdminName, &l.ActionType, &l.TargetType,
			&l.TargetID, &l.Description, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
