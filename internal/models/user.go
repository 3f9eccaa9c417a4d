package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(100);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100)" json:"last_name"`
	BirthDate    time.Time `gorm:"type:date" json:"birth_date"`
	JoinedAt     time.Time `gorm:"autoCreateTime" json:"join_date_time"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	IsSuperuser  bool      `gorm:"not null" json:"is_superuser"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Verification *Verification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Surveys      []Survey      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Answers      []Answer      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
