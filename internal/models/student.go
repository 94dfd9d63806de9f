package models

import (
	"strings"
	"time"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

type Student struct {
	ID               int       `json:"id"`
	SerialNumber     int       `json:"serial_number"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"full_name"`
	RoomNumber       int       `json:"room_number"`
	Branch           string    `json:"branch"`
	Batch            int       `json:"batch"`
	Gender           string    `json:"gender"`
	MobileNumber     string    `json:"mobile_number"`
	EnrollmentNumber string    `json:"enrollment_number"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s Student) IsMale() bool {
	return strings.EqualFold(s.Gender, GenderMale)
}

func (s Student) IsFemale() bool {
	return strings.EqualFold(s.Gender, GenderFemale)
}

// StudentSummary is a dashboard row: the student plus how many months they owe.
type StudentSummary struct {
	Student
	PendingMonths int `json:"pending_months"`
}

// CreateStudentRequest is the add-student form.
type CreateStudentRequest struct {
	SerialNumber     int    `validate:"required,gt=0"`
	Username         string `validate:"required,min=3,max=100"`
	Password         string `validate:"required,min=6"`
	FullName         string `validate:"required,max=200"`
	RoomNumber       int    `validate:"required,gt=0"`
	Branch           string `validate:"required,max=100"`
	Batch            int    `validate:"required,gte=2000,lte=2100"`
	Gender           string `validate:"required,oneof=Male Female"`
	MobileNumber     string `validate:"required,numeric,min=10,max=15"`
	EnrollmentNumber string `validate:"required,numeric,max=30"`
}

// NormalizeGender maps free-form input such as "male" to Male/Female.
// Unknown values are returned trimmed so validation can reject them.
func NormalizeGender(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, GenderMale):
		return GenderMale
	case strings.EqualFold(s, GenderFemale):
		return GenderFemale
	}
	return s
}
