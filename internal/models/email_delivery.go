package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailKind string

const (
	EmailKindRegistration  EmailKind = "registration"
	EmailKindPasswordReset EmailKind = "password_reset"
)

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// EmailDelivery is an outbox row. Its status records whether the message
// actually left the process.
type EmailDelivery struct {
	ID        uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	Kind      EmailKind   `gorm:"type:varchar(32);not null" json:"kind"`
	Recipient string      `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject   string      `gorm:"type:varchar(255);not null" json:"subject"`
	Body      string      `gorm:"type:text;not null" json:"-"`
	Status    EmailStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts  int         `gorm:"not null" json:"attempts"`
	LastError string      `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	SentAt    *time.Time  `json:"sent_at,omitempty"`
}

func (d *EmailDelivery) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	if d.Status == "" {
		d.Status = EmailStatusPending
	}
	return nil
}
