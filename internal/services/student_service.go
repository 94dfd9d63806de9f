package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"mess-backend/internal/auth"
	"mess-backend/internal/logger"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
)

type StudentService struct {
	Students *repositories.StudentRepository
	Ledger   *LedgerService

	validate          *validator.Validate
	enrollNewStudents bool
}

func NewStudentService(students *repositories.StudentRepository, ledger *LedgerService, enrollNewStudents bool) *StudentService {
	return &StudentService{
		Students:          students,
		Ledger:            ledger,
		validate:          validator.New(),
		enrollNewStudents: enrollNewStudents,
	}
}

// ValidationMessage turns validator output into one line for a flash message.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// AddStudent validates the form and creates the student with a hashed password.
func (s *StudentService) AddStudent(ctx context.Context, actor *Actor, req models.CreateStudentRequest) (*models.Student, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Branch = strings.TrimSpace(req.Branch)
	req.Gender = models.NormalizeGender(req.Gender)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	req.EnrollmentNumber = strings.TrimSpace(req.EnrollmentNumber)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, ValidationMessage(err))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &models.Student{
		SerialNumber:     req.SerialNumber,
		Username:         req.Username,
		PasswordHash:     hash,
		FullName:         req.FullName,
		RoomNumber:       req.RoomNumber,
		Branch:           req.Branch,
		Batch:            req.Batch,
		Gender:           req.Gender,
		MobileNumber:     req.MobileNumber,
		EnrollmentNumber: req.EnrollmentNumber,
	}
	if err := s.Students.Create(ctx, student, s.enrollNewStudents); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	logger.For("students").Info().Int("student_id", student.ID).Str("username", student.Username).Msg("student added")
	s.Ledger.audit(ctx, actor, models.ActionStudentCreated, models.TargetStudent, student.ID,
		fmt.Sprintf("Added student %s (room %d)", student.FullName, student.RoomNumber))
	return student, nil
}

func (s *StudentService) List(ctx context.Context) ([]models.StudentSummary, error) {
	return s.Students.ListSummaries(ctx)
}

func (s *StudentService) Search(ctx context.Context, query string) ([]models.StudentSummary, error) {
	return s.Students.Search(ctx, query)
}

func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	return s.Students.Get(ctx, id)
}

// UpdateRoomNumber sets a new room from raw form input.
func (s *StudentService) UpdateRoomNumber(ctx context.Context, actor *Actor, id int, raw string) error {
	room, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || room <= 0 {
		return fmt.Errorf("%w: room number must be a positive number", ErrInvalidInput)
	}
	if err := s.Students.UpdateRoomNumber(ctx, id, room); err != nil {
		return fmt.Errorf("update room number: %w", err)
	}
	s.Ledger.audit(ctx, actor, models.ActionStudentUpdated, models.TargetStudent, id,
		fmt.Sprintf("Room number set to %d", room))
	return nil
}

// UpdateEnrollmentNumber sets a new enrollment number from raw form input.
func (s *StudentService) UpdateEnrollmentNumber(ctx context.Context, actor *Actor, id int, raw string) error {
	enrollment := strings.TrimSpace(raw)
	if err := s.validate.Var(enrollment, "required,numeric,max=30"); err != nil {
		return fmt.Errorf("%w: enrollment number must be digits", ErrInvalidInput)
	}
	if err := s.Students.UpdateEnrollmentNumber(ctx, id, enrollment); err != nil {
		return fmt.Errorf("update enrollment number: %w", err)
	}
	s.Ledger.audit(ctx, actor, models.ActionStudentUpdated, models.TargetStudent, id,
		fmt.Sprintf("Enrollment number set to %s", enrollment))
	return nil
}
