package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/models"
)

// AnswerAttributeDTO is the answer to one survey question
type AnswerAttributeDTO struct {
	ID                uuid.UUID `json:"id"`
	SurveyAttributeID uuid.UUID `json:"survey_attr_id"`
	Value             string    `json:"value"`
}

// AnswerDTO represents an answer in API responses
type AnswerDTO struct {
	ID         uuid.UUID            `json:"id"`
	SurveyID   uuid.UUID            `json:"survey_id"`
	UserID     uuid.UUID            `json:"user_id"`
	Available  bool                 `json:"available"`
	CreatedAt  time.Time            `json:"created_at"`
	Attributes []AnswerAttributeDTO `json:"attrs"`
}

// ToAnswerDTO converts an Answer model
func ToAnswerDTO(answer models.Answer) AnswerDTO {
	attrs := make([]AnswerAttributeDTO, len(answer.Attributes))
	for i, attr := range answer.Attributes {
		attrs[i] = AnswerAttributeDTO{
			ID:                attr.ID,
			SurveyAttributeID: attr.SurveyAttributeID,
			Value:             attr.Value,
		}
	}
	return AnswerDTO{
		ID:         answer.ID,
		SurveyID:   answer.SurveyID,
		UserID:     answer.UserID,
		Available:  answer.Available,
		CreatedAt:  answer.CreatedAt,
		Attributes: attrs,
	}
}
