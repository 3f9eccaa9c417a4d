package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Survey struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Available   bool      `gorm:"not null;index" json:"available"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Attributes []SurveyAttribute `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"attrs,omitempty"`
	Answers    []Answer          `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// IsOwnedBy reports whether userID created the survey.
func (s *Survey) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// SurveyAttribute is a single question of a survey.
type SurveyAttribute struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	SurveyID  uuid.UUID `gorm:"type:varchar(36);not null;index" json:"survey_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Question  string    `gorm:"type:text" json:"question"`
	Required  bool      `gorm:"not null" json:"required"`
	Available bool      `gorm:"not null" json:"available"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	AnswerAttributes []AnswerAttribute `gorm:"foreignKey:SurveyAttributeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *SurveyAttribute) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
