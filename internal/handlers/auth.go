package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/survey-api/internal/constants"
	"github.com/yukikurage/survey-api/internal/dto"
	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register creates an inactive account and emails the confirmation link.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username       string   `json:"username" binding:"required,notblank,max=150"`
		Email          string   `json:"email" binding:"required,email,max=254"`
		Password       string   `json:"password" binding:"required,min=8,max=72"`
		PasswordRepeat string   `json:"password_repeat" binding:"required"`
		FirstName      string   `json:"first_name" binding:"max=150"`
		LastName       string   `json:"last_name" binding:"max=150"`
		BirthDate      dto.Date `json:"birth_date" binding:"required,pastdate"`
	}

	var req RegisterRequest
	if !bindRequest(c, &req) {
		return
	}

	_, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		PasswordRepeat: req.PasswordRepeat,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      req.BirthDate.Time,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "User created. Check your email to confirm the registration",
	})
}

// Login exchanges credentials for an access token and stores it in the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Login    string `json:"login" form:"login" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindRequest(c, &req) {
		return
	}

	token, _, err := h.authService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Set(constants.SessionKeyAccessToken, token)
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Clear()
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to logout")
			return
		}
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// ConfirmRegistration activates the account behind a verification link.
func (h *AuthHandler) ConfirmRegistration(c *gin.Context) {
	verificationID, ok := uuidParam(c, "verification_id")
	if !ok {
		return
	}

	if err := h.authService.ConfirmRegistration(c.Request.Context(), verificationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Registration confirmed"})
}

// RecoverPassword emails a password reset link.
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	if err := h.authService.RequestPasswordReset(c.Request.Context(), c.Param("email")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password recovery email sent"})
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		ResetToken  string `json:"reset_token" form:"reset_token" binding:"required"`
		NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8,max=72"`
	}

	var req ResetPasswordRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// ChangePassword replaces the authenticated user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword     string `json:"current_password" binding:"required"`
		NewPassword         string `json:"new_password" binding:"required,min=8,max=72"`
		NewPasswordRepeated string `json:"new_password_repeated" binding:"required"`
	}

	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	var req ChangePasswordRequest
	if !bindRequest(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), user, services.ChangePasswordInput{
		CurrentPassword:   req.CurrentPassword,
		NewPassword:       req.NewPassword,
		NewPasswordRepeat: req.NewPasswordRepeated,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}
