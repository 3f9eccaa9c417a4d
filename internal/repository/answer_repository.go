package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/models"
)

// GormAnswerRepository is a GORM implementation of AnswerRepository
type GormAnswerRepository struct {
	db      *gorm.DB
	answers *Store[models.Answer]
}

// NewAnswerRepository creates a new AnswerRepository
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &GormAnswerRepository{db: db, answers: NewStore[models.Answer](db)}
}

// Create inserts the answer and its attributes in one transaction. A second
// answer for the same (user, survey) pair fails with ErrConflict.
func (r *GormAnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewStore[models.Answer](tx).Insert(ctx, answer); err != nil {
			return err
		}

		for i := range answer.Attributes {
			answer.Attributes[i].AnswerID = answer.ID
			answer.Attributes[i].Position = i
		}
		return NewStore[models.AnswerAttribute](tx).InsertMany(ctx, answer.Attributes)
	})
}

func (r *GormAnswerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Answer, error) {
	return r.answers.GetOne(ctx, byID(id), preloadOrdered("Attributes"))
}

func (r *GormAnswerRepository) Exists(ctx context.Context, userID, surveyID uuid.UUID) (bool, error) {
	return r.answers.Exists(ctx, Where("user_id = ? AND survey_id = ?", userID, surveyID))
}

// Delete removes the answer and its attributes
func (r *GormAnswerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := NewStore[models.Answer](tx).GetOne(ctx, byID(id)); err != nil {
			return err
		}
		return deleteAnswers(tx, []uuid.UUID{id})
	})
}
