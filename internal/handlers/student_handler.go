package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mess-backend/internal/auth"
	"mess-backend/internal/models"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
)

type studentManager interface {
	AddStudent(ctx context.Context, actor *services.Actor, req models.CreateStudentRequest) (*models.Student, error)
	List(ctx context.Context) ([]models.StudentSummary, error)
	Search(ctx context.Context, query string) ([]models.StudentSummary, error)
	UpdateRoomNumber(ctx context.Context, actor *services.Actor, id int, raw string) error
	UpdateEnrollmentNumber(ctx context.Context, actor *services.Actor, id int, raw string) error
}

type ledgerManager interface {
	IssueFee(ctx context.Context, actor *services.Actor, period models.FeePeriod, rawAmount string) (*models.MonthlyFee, error)
	MarkPaid(ctx context.Context, actor *services.Actor, studentID int, period models.FeePeriod, rawMethod string) (*repositories.MarkPaidResult, error)
	RetractFee(ctx context.Context, actor *services.Actor, feeID int) (*models.MonthlyFee, error)
	RemoveStudent(ctx context.Context, actor *services.Actor, studentID int) error
	UpdateFeeAmount(ctx context.Context, actor *services.Actor, period models.FeePeriod, rawAmount string) error
	FeeSummary(ctx context.Context) (*models.FeeSummary, error)
	StudentLedger(ctx context.Context, studentID int) (*models.StudentLedger, error)
}

// StudentHandler serves the admin pages for managing students and marking
// their fees paid.
type StudentHandler struct {
	Students studentManager
	Ledger   ledgerManager
	render   *Renderer
}

func NewStudentHandler(students studentManager, ledger ledgerManager, render *Renderer) *StudentHandler {
	return &StudentHandler{Students: students, Ledger: ledger, render: render}
}

type dashboardView struct {
	Students []models.StudentSummary
	Query    string
}

// Dashboard lists every student with their pending month count.
func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	students, err := h.Students.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Render(w, r, "admin_dashboard.html", "Admin Dashboard", dashboardView{Students: students})
}

// SearchStudents filters the dashboard by name, branch, gender, room or batch.
func (h *StudentHandler) SearchStudents(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	students, err := h.Students.Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Render(w, r, "admin_dashboard.html", "Admin Dashboard", dashboardView{Students: students, Query: query})
}

func (h *StudentHandler) AddStudentPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "admin_add_student.html", "Add Student", nil)
}

// AddStudent creates a student from the form. Validation problems and
// duplicate usernames go back to the form as a flash message.
func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req := models.CreateStudentRequest{
		SerialNumber:     formInt(r, "serial_number"),
		Username:         r.PostFormValue("username"),
		Password:         r.PostFormValue("password"),
		FullName:         r.PostFormValue("full_name"),
		RoomNumber:       formInt(r, "room_number"),
		Branch:           r.PostFormValue("branch"),
		Batch:            formInt(r, "batch"),
		Gender:           r.PostFormValue("gender"),
		MobileNumber:     r.PostFormValue("mobile_number"),
		EnrollmentNumber: r.PostFormValue("enrollment_number"),
	}

	student, err := h.Students.AddStudent(r.Context(), actorFrom(r), req)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		h.render.Redirect(w, r, "/admin/add-student", auth.FlashError, "Username is already taken")
		return
	case services.IsInvalidInput(err):
		h.render.Redirect(w, r, "/admin/add-student", auth.FlashError, err.Error())
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	h.render.Redirect(w, r, "/admin/dashboard", auth.FlashSuccess,
		fmt.Sprintf("Added %s", student.FullName))
}

// ViewStudent shows the profile and the student's status for every fee.
func (h *StudentHandler) ViewStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ledger, err := h.Ledger.StudentLedger(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Render(w, r, "admin_view_student.html", ledger.Student.FullName, ledger)
}

// DeleteStudent removes the student and releases their pending fees.
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Ledger.RemoveStudent(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Redirect(w, r, "/admin/dashboard", auth.FlashSuccess, "Student deleted")
}

// MarkFeeAsPaid records a payment for the period and returns to the
// student's page.
func (h *StudentHandler) MarkFeeAsPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := pathPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Ledger.MarkPaid(r.Context(), actorFrom(r), id, period, r.PostFormValue("payment_method"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Redirect(w, r, studentPage(id), auth.FlashSuccess,
		fmt.Sprintf("%s marked paid, receipt no. %d", period, res.ReceiptNumber))
}

func (h *StudentHandler) UpdateRoomNumber(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Students.UpdateRoomNumber(r.Context(), actorFrom(r), id, r.PostFormValue("room_number")); err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Redirect(w, r, studentPage(id), auth.FlashSuccess, "Room number updated")
}

func (h *StudentHandler) UpdateEnrollmentNumber(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Students.UpdateEnrollmentNumber(r.Context(), actorFrom(r), id, r.PostFormValue("enrollment_number")); err != nil {
		writeError(w, r, err)
		return
	}
	h.render.Redirect(w, r, studentPage(id), auth.FlashSuccess, "Enrollment number updated")
}

func studentPage(id int) string {
	return "/admin/view-student/" + strconv.Itoa(id)
}

// formInt reads an integer form field, 0 when missing or malformed so the
// validator reports it.
func formInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(name)))
	if err != nil {
		return 0
	}
	return v
}
