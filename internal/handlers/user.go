package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/survey-api/internal/dto"
	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
	"github.com/yukikurage/survey-api/internal/utils"
)

// UserHandler manages user profile endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateMe applies a partial profile update.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	type UpdateProfileRequest struct {
		Username  *string   `json:"username" binding:"omitempty,notblank,max=150"`
		Email     *string   `json:"email" binding:"omitempty,email,max=254"`
		FirstName *string   `json:"first_name" binding:"omitempty,max=150"`
		LastName  *string   `json:"last_name" binding:"omitempty,max=150"`
		BirthDate *dto.Date `json:"birth_date" binding:"omitempty,pastdate"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	var req UpdateProfileRequest
	if !bindRequest(c, &req) {
		return
	}

	input := services.UpdateProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.BirthDate != nil {
		birthDate := req.BirthDate.Time
		input.BirthDate = &birthDate
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListUsers returns a page of users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.Limit, total))
}

// SearchUsers filters users by substrings of their profile fields.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	type SearchUsersQuery struct {
		Username  string `form:"username"`
		Email     string `form:"email"`
		FirstName string `form:"first_name"`
		LastName  string `form:"last_name"`
	}

	var query SearchUsersQuery
	if !bindQuery(c, &query) {
		return
	}
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.SearchUsers(c.Request.Context(), services.SearchUsersInput{
		Username:  query.Username,
		Email:     query.Email,
		FirstName: query.FirstName,
		LastName:  query.LastName,
		Page:      params.Page,
		PageSize:  params.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.Limit, total))
}

// GetUser returns a user by ID.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteMe removes the authenticated account after re-checking its credentials.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	type DeleteAccountRequest struct {
		Login    string `json:"login" form:"login" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	current, exists := middleware.GetUser(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	var req DeleteAccountRequest
	if !bindRequest(c, &req) {
		return
	}

	deleted, err := h.userService.DeleteSelf(c.Request.Context(), current, req.Login, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*deleted))
}
