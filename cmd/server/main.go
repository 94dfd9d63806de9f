package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mess-backend/internal/auth"
	"mess-backend/internal/cache"
	"mess-backend/internal/config"
	"mess-backend/internal/database"
	"mess-backend/internal/db"
	"mess-backend/internal/handlers"
	"mess-backend/internal/health"
	h "mess-backend/internal/http"
	"mess-backend/internal/logger"
	"mess-backend/internal/middleware"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
	"mess-backend/internal/storage"
	"mess-backend/migrations"
	"mess-backend/static"
	"mess-backend/templates"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Env)
	log := logger.For("main")

	if *port > 0 {
		cfg.Server.Port = *port
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	migrator := database.NewMigrator(pool, migrations.FS, ".")
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	if cfg.Redis.Addr != "" {
		if err := cache.Init(cfg); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).
				Msg("redis unavailable, logout revocation and login throttling disabled")
		} else {
			defer cache.Close()
		}
	}

	// Repositories
	studentRepo := repositories.NewStudentRepository(pool)
	feeRepo := repositories.NewMonthlyFeeRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	adminRepo := repositories.NewAdminRepository(pool)
	actionLogRepo := repositories.NewAdminActionLogRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)
	onlinePaymentRepo := repositories.NewOnlinePaymentRepository(pool)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	ledgerService := services.NewLedgerService(ledgerRepo, feeRepo, studentRepo, actionLogRepo)
	studentService := services.NewStudentService(studentRepo, ledgerService, cfg.Ledger.EnrollNewStudents)
	authService := services.NewAuthService(adminRepo, studentRepo, loginLogRepo, jwtManager)
	reportService := services.NewReportService(studentRepo, feeRepo, ledgerRepo, cfg)
	razorpayService := services.NewRazorpayService(cfg, studentRepo, feeRepo, ledgerRepo, onlinePaymentRepo, ledgerService)

	var archive services.ReceiptArchive
	s3Archive, err := storage.NewS3Archive(ctx, cfg)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("receipt archive disabled")
	case s3Archive != nil:
		archive = s3Archive
		log.Info().Str("bucket", cfg.ReceiptArchive.Bucket).Msg("receipt archive enabled")
	}
	receiptService := services.NewReceiptService(studentRepo, feeRepo, ledgerRepo, archive, cfg)

	// ADMIN_USERNAME/ADMIN_PASSWORD seed the first admin on an empty database.
	// cmd/addadmin manages admins afterwards.
	if user, pass := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD"); user != "" && pass != "" {
		if created, err := authService.EnsureDefaultAdmin(ctx, user, pass); err != nil {
			log.Warn().Err(err).Msg("default admin not created")
		} else if created {
			log.Info().Str("username", user).Msg("default admin account created")
		}
	}

	// Handlers
	flash := auth.NewFlashStore(cfg.Session.FlashSecret, cfg.Session.SecureCookies)
	renderer, err := handlers.NewRenderer(templates.FS, flash, cfg.Institution.HostelName)
	if err != nil {
		log.Fatal().Err(err).Msg("templates failed to load")
	}

	router := h.NewRouter(h.Handlers{
		Auth:       handlers.NewAuthHandler(authService, jwtManager, renderer),
		Students:   handlers.NewStudentHandler(studentService, ledgerService, renderer),
		Fees:       handlers.NewFeeHandler(ledgerService, renderer),
		Reports:    handlers.NewReportHandler(reportService, receiptService, renderer),
		ActionLogs: handlers.NewAdminActionLogHandler(actionLogRepo),
		LoginLogs:  handlers.NewLoginLogHandler(loginLogRepo),
		Payments:   handlers.NewOnlinePaymentHandler(onlinePaymentRepo),
		Portal:     handlers.NewStudentPortalHandler(ledgerService, receiptService, razorpayService, renderer),
		Health:     handlers.NewHealthHandler(health.NewHealthChecker(pool)),
	}, middleware.NewAuthMiddleware(jwtManager, authService), static.FS)

	realIP, err := middleware.NewRealIP(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid trusted proxy list")
	}

	handler := middleware.PanicRecovery(
		realIP(
			middleware.RequestLogger(
				middleware.NewCORS(cfg)(router),
			),
		),
	)

	requestTimeout := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).
			Bool("online_payments", razorpayService.IsEnabled()).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited gracefully")
}
