package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/models"
)

// GormVerificationRepository is a GORM implementation of VerificationRepository
type GormVerificationRepository struct {
	verifications *Store[models.Verification]
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &GormVerificationRepository{verifications: NewStore[models.Verification](db)}
}

func (r *GormVerificationRepository) Create(ctx context.Context, verification *models.Verification) error {
	return r.verifications.Insert(ctx, verification)
}

func (r *GormVerificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	return r.verifications.GetOne(ctx, byID(id))
}

func (r *GormVerificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.verifications.Delete(ctx, byID(id))
	return err
}
