package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/models"
)

// SurveyAttributeDTO represents one survey question in API responses
type SurveyAttributeDTO struct {
	ID        uuid.UUID `json:"id"`
	SurveyID  uuid.UUID `json:"survey_id"`
	Name      string    `json:"name"`
	Question  string    `json:"question"`
	Required  bool      `json:"required"`
	Available bool      `json:"available"`
	Position  int       `json:"position"`
}

// SurveyDTO represents a survey in API responses
type SurveyDTO struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Available   bool                 `json:"available"`
	UserID      uuid.UUID            `json:"user_id"`
	CreatedAt   time.Time            `json:"created_at"`
	Attributes  []SurveyAttributeDTO `json:"attrs,omitempty"`
}

// SurveyListResponse represents a paginated list of surveys
type SurveyListResponse struct {
	Surveys    []SurveyDTO `json:"surveys"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
}

// ToSurveyAttributeDTO converts a SurveyAttribute model
func ToSurveyAttributeDTO(attr models.SurveyAttribute) SurveyAttributeDTO {
	return SurveyAttributeDTO{
		ID:        attr.ID,
		SurveyID:  attr.SurveyID,
		Name:      attr.Name,
		Question:  attr.Question,
		Required:  attr.Required,
		Available: attr.Available,
		Position:  attr.Position,
	}
}

// ToSurveyDTO converts a Survey model, including whatever attributes are loaded
func ToSurveyDTO(survey models.Survey) SurveyDTO {
	dto := SurveyDTO{
		ID:          survey.ID,
		Name:        survey.Name,
		Description: survey.Description,
		Available:   survey.Available,
		UserID:      survey.UserID,
		CreatedAt:   survey.CreatedAt,
	}
	if len(survey.Attributes) > 0 {
		dto.Attributes = make([]SurveyAttributeDTO, len(survey.Attributes))
		for i, attr := range survey.Attributes {
			dto.Attributes[i] = ToSurveyAttributeDTO(attr)
		}
	}
	return dto
}

// ToSurveyListResponse converts a page of surveys
func ToSurveyListResponse(surveys []models.Survey, page, pageSize int, total int64) SurveyListResponse {
	items := make([]SurveyDTO, len(surveys))
	for i, survey := range surveys {
		items[i] = ToSurveyDTO(survey)
	}
	return SurveyListResponse{
		Surveys:    items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: TotalPages(total, pageSize),
	}
}
