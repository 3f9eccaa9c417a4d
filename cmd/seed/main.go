// Command seed inserts the admin fixture described by the ADMIN_FIXTURE_* settings.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/yukikurage/survey-api/internal/config"
	"github.com/yukikurage/survey-api/internal/database"
	"github.com/yukikurage/survey-api/internal/mailer"
	"github.com/yukikurage/survey-api/internal/repository"
	"github.com/yukikurage/survey-api/internal/services"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	renderer := mailer.Renderer{ProjectName: cfg.ProjectName, BaseURI: cfg.BaseAppURI(), ResetExpire: cfg.PasswordResetExpire}
	users := services.NewUserService(repository.New(db), renderer, nil)

	admin, created, err := users.SeedAdmin(context.Background(), cfg.AdminFixture)
	if err != nil {
		logger.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("admin already exists", "username", cfg.AdminFixture.Username)
		return
	}
	logger.Info("admin created", "id", admin.ID, "username", admin.Username)
}
