// Package router wires the HTTP handlers onto a gin engine.
package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/survey-api/internal/constants"
	"github.com/yukikurage/survey-api/internal/handlers"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
	"github.com/yukikurage/survey-api/internal/validation"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Logger       *slog.Logger
	SessionStore sessions.Store
	ProjectName  string

	AuthService   *services.AuthService
	UserService   *services.UserService
	SurveyService *services.SurveyService
	AnswerService *services.AnswerService
}

// New builds the engine serving /health and the /api/v1 routes.
func New(deps Dependencies) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	if deps.SessionStore != nil {
		r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.UserService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	surveyHandler := handlers.NewSurveyHandler(deps.SurveyService)
	answerHandler := handlers.NewAnswerHandler(deps.AnswerService)

	requireAuth := middleware.RequireAuth(deps.AuthService)
	optionalAuth := middleware.OptionalAuth(deps.AuthService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": deps.ProjectName + " is running",
		})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/registration", authHandler.Register)
			auth.POST("/login/access-token", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/confirm-registration/:verification_id", authHandler.ConfirmRegistration)
			auth.GET("/recover-password/:email", authHandler.RecoverPassword)
			auth.POST("/recover-password/:email", authHandler.RecoverPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.PATCH("/change-password", requireAuth, authHandler.ChangePassword)
		}

		users := api.Group("/user")
		{
			users.GET("", optionalAuth, userHandler.ListUsers)
			users.DELETE("", requireAuth, userHandler.DeleteMe)
			users.GET("/me", requireAuth, userHandler.Me)
			users.PATCH("/me/update", requireAuth, userHandler.UpdateMe)
			users.GET("/search", optionalAuth, userHandler.SearchUsers)
			users.GET("/:id", optionalAuth, userHandler.GetUser)
		}

		surveys := api.Group("/survey")
		{
			surveys.POST("", requireAuth, surveyHandler.CreateSurvey)
			surveys.GET("", optionalAuth, surveyHandler.ListSurveys)
			surveys.GET("/search", optionalAuth, surveyHandler.SearchSurveys)
			surveys.GET("/user/me", requireAuth, surveyHandler.ListMySurveys)
			surveys.GET("/user/:id", optionalAuth, surveyHandler.ListUserSurveys)
			surveys.GET("/attr/:id", optionalAuth, surveyHandler.GetSurveyAttribute)
			surveys.PATCH("/attr/:id", requireAuth, surveyHandler.UpdateSurveyAttribute)
			surveys.DELETE("/attr/:id", requireAuth, surveyHandler.DeleteSurveyAttribute)
			surveys.GET("/:id", optionalAuth, surveyHandler.GetSurvey)
			surveys.PATCH("/:id", requireAuth, surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", requireAuth, surveyHandler.DeleteSurvey)
		}

		answers := api.Group("/answer")
		{
			answers.POST("/:survey_id", requireAuth, answerHandler.CreateAnswer)
			answers.GET("/:id", optionalAuth, answerHandler.GetAnswer)
			answers.DELETE("/:id", requireAuth, answerHandler.DeleteAnswer)
		}
	}

	return r, nil
}
