package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/models"
)

// GormEmailDeliveryRepository is a GORM implementation of EmailDeliveryRepository
type GormEmailDeliveryRepository struct {
	db         *gorm.DB
	deliveries *Store[models.EmailDelivery]
}

// NewEmailDeliveryRepository creates a new EmailDeliveryRepository
func NewEmailDeliveryRepository(db *gorm.DB) EmailDeliveryRepository {
	return &GormEmailDeliveryRepository{db: db, deliveries: NewStore[models.EmailDelivery](db)}
}

func (r *GormEmailDeliveryRepository) Create(ctx context.Context, delivery *models.EmailDelivery) error {
	return r.deliveries.Insert(ctx, delivery)
}

func (r *GormEmailDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EmailDelivery, error) {
	return r.deliveries.GetOne(ctx, byID(id))
}

func (r *GormEmailDeliveryRepository) ListPending(ctx context.Context, limit int) ([]models.EmailDelivery, error) {
	return r.deliveries.List(ctx,
		Where("status = ?", models.EmailStatusPending),
		OrderBy("created_at ASC"),
		func(db *gorm.DB) *gorm.DB { return db.Limit(limit) },
	)
}

func (r *GormEmailDeliveryRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.mark(ctx, id, map[string]interface{}{
		"status":     models.EmailStatusSent,
		"sent_at":    at,
		"last_error": "",
	})
}

func (r *GormEmailDeliveryRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.mark(ctx, id, map[string]interface{}{
		"status":     models.EmailStatusFailed,
		"last_error": reason,
	})
}

func (r *GormEmailDeliveryRepository) mark(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	changes["attempts"] = gorm.Expr("attempts + ?", 1)
	result := r.db.WithContext(ctx).Model(&models.EmailDelivery{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
