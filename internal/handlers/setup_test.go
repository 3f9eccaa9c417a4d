package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/auth"
	"github.com/yukikurage/survey-api/internal/config"
	"github.com/yukikurage/survey-api/internal/constants"
	"github.com/yukikurage/survey-api/internal/mailer"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
	"github.com/yukikurage/survey-api/internal/services"
	"github.com/yukikurage/survey-api/internal/testutil"
	"github.com/yukikurage/survey-api/internal/validation"
)

type handlerTestEnv struct {
	db      *gorm.DB
	auth    *services.AuthService
	users   *services.UserService
	surveys *services.SurveyService
	answers *services.AnswerService
	router  *gin.Engine
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

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

	env := handlerTestEnv{
		db:      db,
		auth:    services.NewAuthService(repos, tokens, renderer, nil),
		users:   services.NewUserService(repos, renderer, nil),
		surveys: services.NewSurveyService(repos),
		answers: services.NewAnswerService(repos),
	}

	authHandler := NewAuthHandler(env.auth, env.users)
	userHandler := NewUserHandler(env.users)
	surveyHandler := NewSurveyHandler(env.surveys)
	answerHandler := NewAnswerHandler(env.answers)
	requireAuth := middleware.RequireAuth(env.auth)
	optionalAuth := middleware.OptionalAuth(env.auth)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))

	r.POST("/auth/registration", authHandler.Register)
	r.POST("/auth/login/access-token", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)
	r.GET("/auth/confirm-registration/:verification_id", authHandler.ConfirmRegistration)
	r.POST("/auth/recover-password/:email", authHandler.RecoverPassword)
	r.POST("/auth/reset-password", authHandler.ResetPassword)
	r.PATCH("/auth/change-password", requireAuth, authHandler.ChangePassword)

	r.GET("/user", optionalAuth, userHandler.ListUsers)
	r.DELETE("/user", requireAuth, userHandler.DeleteMe)
	r.GET("/user/me", requireAuth, userHandler.Me)
	r.PATCH("/user/me/update", requireAuth, userHandler.UpdateMe)
	r.GET("/user/search", optionalAuth, userHandler.SearchUsers)
	r.GET("/user/:id", optionalAuth, userHandler.GetUser)

	r.POST("/survey", requireAuth, surveyHandler.CreateSurvey)
	r.GET("/survey", optionalAuth, surveyHandler.ListSurveys)
	r.GET("/survey/search", optionalAuth, surveyHandler.SearchSurveys)
	r.GET("/survey/user/me", requireAuth, surveyHandler.ListMySurveys)
	r.GET("/survey/attr/:id", optionalAuth, surveyHandler.GetSurveyAttribute)
	r.PATCH("/survey/attr/:id", requireAuth, surveyHandler.UpdateSurveyAttribute)
	r.DELETE("/survey/attr/:id", requireAuth, surveyHandler.DeleteSurveyAttribute)
	r.GET("/survey/:id", optionalAuth, surveyHandler.GetSurvey)
	r.PATCH("/survey/:id", requireAuth, surveyHandler.UpdateSurvey)
	r.DELETE("/survey/:id", requireAuth, surveyHandler.DeleteSurvey)

	r.POST("/answer/:survey_id", requireAuth, answerHandler.CreateAnswer)
	r.GET("/answer/:id", optionalAuth, answerHandler.GetAnswer)
	r.DELETE("/answer/:id", requireAuth, answerHandler.DeleteAnswer)

	env.router = r
	return env
}

// request performs a JSON request, authenticated when token is not empty.
func (env handlerTestEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env handlerTestEnv) registerUser(t *testing.T, username string, active bool) *models.User {
	t.Helper()
	ctx := context.Background()

	user, err := env.users.Register(ctx, services.RegisterInput{
		Username:       username,
		Email:          username + "@x.com",
		Password:       "secret123",
		PasswordRepeat: "secret123",
		FirstName:      "First",
		LastName:       "Last",
		BirthDate:      time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	if !active {
		return user
	}

	var verification models.Verification
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&verification).Error)
	require.NoError(t, env.auth.ConfirmRegistration(ctx, verification.ID))

	user, err = env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	return user
}

func (env handlerTestEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := env.auth.IssueAccessToken(user.ID)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

