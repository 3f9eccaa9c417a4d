package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is one user's response to a survey. A user answers a survey at most once.
type Answer struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SurveyID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_survey,priority:2" json:"survey_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_survey,priority:1" json:"user_id"`
	Available bool      `gorm:"not null" json:"available"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Attributes []AnswerAttribute `gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE" json:"attrs,omitempty"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// AnswerAttribute holds the answer to one SurveyAttribute.
type AnswerAttribute struct {
	ID                uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	AnswerID          uuid.UUID `gorm:"type:varchar(36);not null;index" json:"answer_id"`
	SurveyAttributeID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"survey_attr_id"`
	Value             string    `gorm:"type:text" json:"value"`
	Position          int       `gorm:"not null" json:"position"`
}

func (a *AnswerAttribute) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
