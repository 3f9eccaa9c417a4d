package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification is the one-time email confirmation token issued at registration.
// Its ID is the token mailed to the user.
type Verification struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	assignID(&v.ID)
	return nil
}
