package http

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mess-backend/internal/auth"
	"mess-backend/internal/handlers"
	"mess-backend/internal/middleware"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Students   *handlers.StudentHandler
	Fees       *handlers.FeeHandler
	Reports    *handlers.ReportHandler
	ActionLogs *handlers.AdminActionLogHandler
	LoginLogs  *handlers.LoginLogHandler
	Payments   *handlers.OnlinePaymentHandler
	Portal     *handlers.StudentPortalHandler
	Health     *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, staticFS fs.FS) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Operational
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Handle("/", http.RedirectHandler("/student/login", http.StatusFound)).Methods("GET")

	// Login pages (public)
	adminLogin := r.Path("/admin/login").Subrouter()
	adminLogin.Use(authMiddleware.RedirectIfLoggedIn(auth.RoleAdmin, "/admin/dashboard"))
	adminLogin.Methods("GET").HandlerFunc(h.Auth.AdminLoginPage)
	adminLogin.Methods("POST").HandlerFunc(h.Auth.AdminLogin)

	studentLogin := r.Path("/student/login").Subrouter()
	studentLogin.Use(authMiddleware.RedirectIfLoggedIn(auth.RoleStudent, "/student/dashboard"))
	studentLogin.Methods("GET").HandlerFunc(h.Auth.StudentLoginPage)
	studentLogin.Methods("POST").HandlerFunc(h.Auth.StudentLogin)

	// Admin pages
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware.RequireRole(auth.RoleAdmin))
	admin.HandleFunc("/logout", h.Auth.Logout).Methods("POST")
	admin.HandleFunc("/dashboard", h.Students.Dashboard).Methods("GET")
	admin.HandleFunc("/search-students", h.Students.SearchStudents).Methods("GET")
	admin.HandleFunc("/add-student", h.Students.AddStudentPage).Methods("GET")
	admin.HandleFunc("/add-student", h.Students.AddStudent).Methods("POST")
	admin.HandleFunc("/view-student/{studentId}", h.Students.ViewStudent).Methods("GET")
	admin.HandleFunc("/delete-student/{studentId}", h.Students.DeleteStudent).Methods("POST")
	admin.HandleFunc("/update-room-number/{studentId}", h.Students.UpdateRoomNumber).Methods("POST")
	admin.HandleFunc("/update-enrollment-number/{studentId}", h.Students.UpdateEnrollmentNumber).Methods("POST")
	admin.HandleFunc("/mark-fee-as-paid/{studentId}/{month}/{year}", h.Students.MarkFeeAsPaid).Methods("POST")

	admin.HandleFunc("/add-monthly-fees", h.Fees.FeesPage).Methods("GET")
	admin.HandleFunc("/add-monthly-fees", h.Fees.AddFees).Methods("POST")
	admin.HandleFunc("/delete-monthly-fees/{feeId}", h.Fees.DeleteFees).Methods("POST")
	admin.HandleFunc("/update-fee-amount", h.Fees.UpdateFeeAmount).Methods("POST")

	admin.HandleFunc("/generate-report", h.Reports.PendingReport).Methods("GET")
	admin.HandleFunc("/download-all-students", h.Reports.AllStudents).Methods("GET")
	admin.HandleFunc("/download-basic-students", h.Reports.BasicStudents).Methods("GET")
	admin.HandleFunc("/download-receipt/{studentId}/{month}/{year}", h.Reports.DownloadReceipt).Methods("GET")
	admin.HandleFunc("/generate-fees-collection-report", h.Reports.CollectionReportPage).Methods("GET")
	admin.HandleFunc("/generate-fees-collection-report", h.Reports.CollectionReport).Methods("POST")

	admin.HandleFunc("/action-logs", h.ActionLogs.ListActionLogs).Methods("GET")
	admin.HandleFunc("/login-logs", h.LoginLogs.ListLoginLogs).Methods("GET")
	admin.HandleFunc("/online-payments", h.Payments.ListOnlinePayments).Methods("GET")

	// Student portal
	student := r.PathPrefix("/student").Subrouter()
	student.Use(authMiddleware.RequireRole(auth.RoleStudent))
	student.HandleFunc("/logout", h.Auth.Logout).Methods("GET")
	student.HandleFunc("/dashboard", h.Portal.Dashboard).Methods("GET")
	student.HandleFunc("/download-receipt/{month}/{year}", h.Portal.DownloadReceipt).Methods("GET")
	student.HandleFunc("/pay/verify", h.Portal.VerifyPayment).Methods("POST")
	student.HandleFunc("/pay/{month}/{year}", h.Portal.CreateOrder).Methods("POST")

	return r
}
