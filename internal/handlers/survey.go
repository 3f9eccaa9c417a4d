package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/dto"
	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
	"github.com/yukikurage/survey-api/internal/utils"
)

// SurveyHandler manages survey and survey attribute endpoints.
type SurveyHandler struct {
	surveyService *services.SurveyService
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(surveyService *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

type surveyAttributeRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=255"`
	Question  string `json:"question" binding:"required,notblank"`
	Required  bool   `json:"required"`
	Available *bool  `json:"available"`
}

// CreateSurvey creates a survey owned by the authenticated user.
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	type CreateSurveyRequest struct {
		Name        string                   `json:"name" binding:"required,notblank,max=255"`
		Description string                   `json:"description"`
		Available   *bool                    `json:"available"`
		Attributes  []surveyAttributeRequest `json:"attrs" binding:"dive"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	var req CreateSurveyRequest
	if !bindRequest(c, &req) {
		return
	}

	input := services.CreateSurveyInput{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
		Attributes:  make([]services.SurveyAttributeInput, len(req.Attributes)),
	}
	for i, attr := range req.Attributes {
		input.Attributes[i] = services.SurveyAttributeInput{
			Name:      attr.Name,
			Question:  attr.Question,
			Required:  attr.Required,
			Available: attr.Available,
		}
	}

	survey, err := h.surveyService.CreateSurvey(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSurveyDTO(*survey))
}

// GetSurvey returns a survey with the attributes visible to the requester.
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	surveyID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	survey, err := h.surveyService.GetSurvey(c.Request.Context(), surveyID, requesterID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyDTO(*survey))
}

// ListSurveys returns a page of available surveys.
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	surveys, total, err := h.surveyService.ListSurveys(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyListResponse(surveys, params.Page, params.Limit, total))
}

// SearchSurveys filters available surveys by name and description.
func (h *SurveyHandler) SearchSurveys(c *gin.Context) {
	type SearchSurveysQuery struct {
		Name        string `form:"name"`
		Description string `form:"description"`
	}

	var query SearchSurveysQuery
	if !bindQuery(c, &query) {
		return
	}
	params := utils.GetPaginationParams(c)

	surveys, total, err := h.surveyService.FilterSurveys(c.Request.Context(), services.FilterSurveysInput{
		Name:        query.Name,
		Description: query.Description,
		Page:        params.Page,
		PageSize:    params.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyListResponse(surveys, params.Page, params.Limit, total))
}

// ListMySurveys returns every survey owned by the authenticated user.
func (h *SurveyHandler) ListMySurveys(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	h.listUserSurveys(c, userID)
}

// ListUserSurveys returns the surveys of another user.
func (h *SurveyHandler) ListUserSurveys(c *gin.Context) {
	ownerID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	h.listUserSurveys(c, ownerID)
}

func (h *SurveyHandler) listUserSurveys(c *gin.Context, ownerID uuid.UUID) {
	params := utils.GetPaginationParams(c)

	surveys, total, err := h.surveyService.ListUserSurveys(c.Request.Context(), ownerID, requesterID(c), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyListResponse(surveys, params.Page, params.Limit, total))
}

// UpdateSurvey applies a partial update to a survey owned by the requester.
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	type UpdateSurveyRequest struct {
		Name        *string `json:"name" binding:"omitempty,notblank,max=255"`
		Description *string `json:"description"`
		Available   *bool   `json:"available"`
	}

	surveyID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSurveyRequest
	if !bindRequest(c, &req) {
		return
	}

	survey, err := h.surveyService.UpdateSurvey(c.Request.Context(), surveyID, requesterID(c), services.UpdateSurveyInput{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyDTO(*survey))
}

// DeleteSurvey removes a survey together with its attributes and answers.
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	surveyID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.surveyService.DeleteSurvey(c.Request.Context(), surveyID, requesterID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	noContent(c)
}

// GetSurveyAttribute returns a single survey attribute.
func (h *SurveyHandler) GetSurveyAttribute(c *gin.Context) {
	attrID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	attr, err := h.surveyService.GetSurveyAttribute(c.Request.Context(), attrID, requesterID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyAttributeDTO(*attr))
}

// UpdateSurveyAttribute applies a partial update to a survey attribute.
func (h *SurveyHandler) UpdateSurveyAttribute(c *gin.Context) {
	type UpdateSurveyAttributeRequest struct {
		Name      *string `json:"name" binding:"omitempty,notblank,max=255"`
		Question  *string `json:"question" binding:"omitempty,notblank"`
		Required  *bool   `json:"required"`
		Available *bool   `json:"available"`
	}

	attrID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSurveyAttributeRequest
	if !bindRequest(c, &req) {
		return
	}

	attr, err := h.surveyService.UpdateSurveyAttribute(c.Request.Context(), attrID, requesterID(c), services.UpdateSurveyAttributeInput{
		Name:      req.Name,
		Question:  req.Question,
		Required:  req.Required,
		Available: req.Available,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSurveyAttributeDTO(*attr))
}

// DeleteSurveyAttribute removes a survey attribute and the answers given to it.
func (h *SurveyHandler) DeleteSurveyAttribute(c *gin.Context) {
	attrID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.surveyService.DeleteSurveyAttribute(c.Request.Context(), attrID, requesterID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	noContent(c)
}
