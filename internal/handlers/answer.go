package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/dto"
	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
)

// AnswerHandler manages answer endpoints.
type AnswerHandler struct {
	answerService *services.AnswerService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// CreateAnswer records the authenticated user's answer to a survey.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	type AnswerAttributeRequest struct {
		SurveyAttributeID uuid.UUID `json:"survey_attr_id" binding:"required"`
		Value             string    `json:"value"`
	}
	type CreateAnswerRequest struct {
		Available  *bool                    `json:"available"`
		Attributes []AnswerAttributeRequest `json:"attrs" binding:"dive"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.NotAuthenticated(c, "")
		return
	}

	surveyID, ok := uuidParam(c, "survey_id")
	if !ok {
		return
	}

	var req CreateAnswerRequest
	if !bindRequest(c, &req) {
		return
	}

	input := services.CreateAnswerInput{
		Available:  req.Available,
		Attributes: make([]services.AnswerAttributeInput, len(req.Attributes)),
	}
	for i, attr := range req.Attributes {
		input.Attributes[i] = services.AnswerAttributeInput{
			SurveyAttributeID: attr.SurveyAttributeID,
			Value:             attr.Value,
		}
	}

	answer, err := h.answerService.CreateAnswer(c.Request.Context(), userID, surveyID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAnswerDTO(*answer))
}

// GetAnswer returns an answer visible to the requester.
func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	answerID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	answer, err := h.answerService.GetAnswer(c.Request.Context(), answerID, requesterID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnswerDTO(*answer))
}

// DeleteAnswer removes the requester's own answer.
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.answerService.DeleteAnswer(c.Request.Context(), answerID, requesterID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	noContent(c)
}
