package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mess-backend/internal/models"
)

type StudentRepository struct {
	DB *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{DB: db}
}

const studentColumns = `s.id, s.serial_number, s.username, s.password_hash, s.full_name,
	s.room_number, s.branch, s.batch, s.gender, s.mobile_number, s.enrollment_number,
	s.created_at, s.updated_at`

func scanStudent(row pgx.Row, s *models.Student, extra ...any) error {
	dest := []any{
		&s.ID, &s.SerialNumber, &s.Username, &s.PasswordHash, &s.FullName,
		&s.RoomNumber, &s.Branch, &s.Batch, &s.Gender, &s.MobileNumber, &s.EnrollmentNumber,
		&s.CreatedAt, &s.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts the student. With enrollInFees the student also gets a
// pending entry on every existing fee, and each fee's pending count grows
// by one, all in the same transaction.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student, enrollInFees bool) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO students (
			serial_number, username, password_hash, full_name, room_number,
			branch, batch, gender, mobile_number, enrollment_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		s.SerialNumber, s.Username, s.PasswordHash, s.FullName, s.RoomNumber,
		s.Branch, s.Batch, s.Gender, s.MobileNumber, s.EnrollmentNumber,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}

	if enrollInFees {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fee_ledger (student_id, fee_id) SELECT $1, id FROM monthly_fees`,
			s.ID,
		); err != nil {
			return fmt.Errorf("enroll in fees: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE monthly_fees SET pending_count = pending_count + 1`); err != nil {
			return fmt.Errorf("bump pending counts: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *StudentRepository) Get(ctx context.Context, id int) (*models.Student, error) {
	var s models.Student
	err := scanStudent(r.DB.QueryRow(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.id = $1`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	var s models.Student
	err := scanStudent(r.DB.QueryRow(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.username = $1`, username), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSummaries returns every student with their pending month count, by room.
func (r *StudentRepository) ListSummaries(ctx context.Context) ([]models.StudentSummary, error) {
	return r.querySummaries(ctx, "", nil)
}

// Search matches name or branch by substring, gender exactly, and room
// number or batch when the query is a number. All matching ignores case.
func (r *StudentRepository) Search(ctx context.Context, query string) ([]models.StudentSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.ListSummaries(ctx)
	}

	var number *int
	if n, err := strconv.Atoi(query); err == nil {
		number = &n
	}

	where := `WHERE s.full_name ILIKE $1 OR s.branch ILIKE $1 OR LOWER(s.gender) = LOWER($2)
		OR ($3::int IS NOT NULL AND (s.room_number = $3 OR s.batch = $3))`
	return r.querySummaries(ctx, where, []any{likePattern(query), query, number})
}

func (r *StudentRepository) querySummaries(ctx context.Context, where string, args []any) ([]models.StudentSummary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+studentColumns+`,
			COUNT(l.fee_id) FILTER (WHERE l.pending) AS pending_months
		FROM students s
		LEFT JOIN fee_ledger l ON l.student_id = s.id
		`+where+`
		GROUP BY s.id
		ORDER BY s.room_number, s.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StudentSummary
	for rows.Next() {
		var sum models.StudentSummary
		if err := scanStudent(rows, &sum.Student, &sum.PendingMonths); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (r *StudentRepository) UpdateRoomNumber(ctx context.Context, id, room int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE students SET room_number = $2, updated_at = NOW() WHERE id = $1`, id, room)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) UpdateEnrollmentNumber(ctx context.Context, id int, enrollment string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE students SET enrollment_number = $2, updated_at = NOW() WHERE id = $1`, id, enrollment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}
