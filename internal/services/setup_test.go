package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/auth"
	"github.com/yukikurage/survey-api/internal/config"
	"github.com/yukikurage/survey-api/internal/mailer"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
	"github.com/yukikurage/survey-api/internal/testutil"
)

type countingNotifier struct {
	nudges atomic.Int32
}

func (n *countingNotifier) Nudge() {
	n.nudges.Add(1)
}

type serviceTestEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	cfg      *config.Config
	tokens   *auth.TokenService
	notifier *countingNotifier
	auth     *AuthService
	users    *UserService
	surveys  *SurveyService
	answers  *AnswerService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repository.New(db)
	cfg := &config.Config{
		ProjectName:          "Survey API",
		ServerHost:           "localhost:8080",
		SecretKey:            "test-secret",
		TokenEncodeAlgorithm: "HS256",
		AccessTokenExpire:    time.Hour,
		PasswordResetExpire:  48 * time.Hour,
		AccessTokenSubject:   "access",
		PasswordResetSubject: "preset",
	}
	tokens := auth.NewTokenService(cfg)
	renderer := mailer.Renderer{ProjectName: cfg.ProjectName, BaseURI: cfg.BaseAppURI(), ResetExpire: cfg.PasswordResetExpire}
	notifier := &countingNotifier{}

	return serviceTestEnv{
		db:       db,
		repos:    repos,
		cfg:      cfg,
		tokens:   tokens,
		notifier: notifier,
		auth:     NewAuthService(repos, tokens, renderer, notifier),
		users:    NewUserService(repos, renderer, notifier),
		surveys:  NewSurveyService(repos),
		answers:  NewAnswerService(repos),
	}
}

func (env serviceTestEnv) register(t *testing.T, username, password string) *models.User {
	t.Helper()

	user, err := env.users.Register(context.Background(), RegisterInput{
		Username:       username,
		Email:          username + "@x.com",
		Password:       password,
		PasswordRepeat: password,
		FirstName:      "First",
		LastName:       "Last",
		BirthDate:      time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return user
}

// registerActive registers and confirms a user.
func (env serviceTestEnv) registerActive(t *testing.T, username, password string) *models.User {
	t.Helper()

	user := env.register(t, username, password)
	var verification models.Verification
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&verification).Error)
	require.NoError(t, env.auth.ConfirmRegistration(context.Background(), verification.ID))

	active, err := env.users.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	return active
}
