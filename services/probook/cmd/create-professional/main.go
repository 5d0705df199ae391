// Command create-professional provisions a professional user and business profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ramo2594/probook/libs/config"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/services/probook/internal/accounts"
	"github.com/ramo2594/probook/services/probook/internal/storage"
)

func main() {
	if err := loadEnv(); err != nil {
		fatal(err.Error())
	}

	var (
		dbURL    = flag.String("database-url", getenv("DATABASE_URL", ""), "postgres connection string")
		username = flag.String("username", "", "login username")
		email    = flag.String("email", "", "owner e-mail, receives booking notifications")
		password = flag.String("password", getenv("PROBOOK_PASSWORD", ""), "login password (or PROBOOK_PASSWORD)")
		phone    = flag.String("phone", "", "optional phone number")
		business = flag.String("business", "", "business name shown on the booking page")
		services = flag.String("services", "", "free-text list of services")
		migrate  = flag.Bool("migrate", true, "apply schema migrations first")
	)
	flag.Parse()

	if strings.TrimSpace(*dbURL) == "" {
		fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, *dbURL)
	if err != nil {
		fatal("db connection failed: " + err.Error())
	}
	defer pool.Close()

	if *migrate {
		if err := storage.Migrate(ctx, pool); err != nil {
			fatal("migration failed: " + err.Error())
		}
	}

	svc := accounts.NewService(storage.NewUserRepository(pool))
	u, p, err := svc.CreateProfessional(ctx, accounts.NewProfessional{
		Username:     *username,
		Email:        *email,
		Password:     *password,
		Phone:        *phone,
		BusinessName: *business,
		Services:     *services,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		fatal(fmt.Sprintf("username %q already exists", *username))
	}
	if err != nil {
		fatal(err.Error())
	}

	fmt.Printf("user_id=%d professional_id=%d booking_url=/book/%d/\n", u.ID, p.ID, p.ID)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadEnv reads .env files; a missing file is fine, a malformed one is not.
func loadEnv(files ...string) error {
	if err := config.LoadDotEnv(files...); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
