// Command addadmin creates an admin account.
//
//	addadmin -username admin -password secret [-totp] [-if-none]
//
// With -if-none nothing is created when any admin already exists. With
// -totp an authenticator secret is enrolled and its otpauth URL printed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"mess-backend/internal/auth"
	"mess-backend/internal/config"
	"mess-backend/internal/database"
	"mess-backend/internal/db"
	"mess-backend/internal/logger"
	"mess-backend/internal/repositories"
	"mess-backend/internal/services"
	"mess-backend/migrations"
)

func main() {
	username := flag.String("username", "admin", "Admin username")
	password := flag.String("password", "", "Admin password (min 6 characters)")
	withTOTP := flag.Bool("totp", false, "Enroll an authenticator app secret")
	ifNone := flag.Bool("if-none", false, "Only create the admin when no admin exists")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Env)
	log := logger.For("addadmin")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := database.NewMigrator(pool, migrations.FS, ".").RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	svc := services.NewAuthService(
		repositories.NewAdminRepository(pool),
		repositories.NewStudentRepository(pool),
		repositories.NewLoginLogRepository(pool),
		auth.NewJWTManager(cfg),
	)

	if *ifNone {
		created, err := svc.EnsureDefaultAdmin(ctx, *username, *password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create admin")
		}
		if !created {
			fmt.Println("An admin already exists. No new admin created.")
			return
		}
		fmt.Printf("Admin %q added successfully\n", *username)
		return
	}

	admin, otpURL, err := svc.CreateAdmin(ctx, *username, *password, *withTOTP)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		fmt.Fprintf(os.Stderr, "admin %q already exists\n", *username)
		os.Exit(1)
	case err != nil:
		log.Fatal().Err(err).Msg("failed to create admin")
	}

	fmt.Printf("Admin %q added successfully (id %d)\n", admin.Username, admin.ID)
	if otpURL != "" {
		fmt.Println("Add this to your authenticator app:")
		fmt.Println(otpURL)
	}
}
