package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/database"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/utils"
)

// GormSurveyRepository is a GORM implementation of SurveyRepository
type GormSurveyRepository struct {
	db         *gorm.DB
	surveys    *Store[models.Survey]
	attributes *Store[models.SurveyAttribute]
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &GormSurveyRepository{
		db:         db,
		surveys:    NewStore[models.Survey](db),
		attributes: NewStore[models.SurveyAttribute](db),
	}
}

// Create inserts the survey row, then bulk-inserts its attributes tagged with
// the new survey ID. Attribute positions follow slice order.
func (r *GormSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewStore[models.Survey](tx).Insert(ctx, survey); err != nil {
			return err
		}

		for i := range survey.Attributes {
			survey.Attributes[i].SurveyID = survey.ID
			survey.Attributes[i].Position = i
		}
		return NewStore[models.SurveyAttribute](tx).InsertMany(ctx, survey.Attributes)
	})
}

// FindByID finds a survey by ID
func (r *GormSurveyRepository) FindByID(ctx context.Context, id uuid.UUID, withAttributes bool) (*models.Survey, error) {
	scopes := []Scope{byID(id)}
	if withAttributes {
		scopes = append(scopes, preloadOrdered("Attributes"))
	}
	return r.surveys.GetOne(ctx, scopes...)
}

// List retrieves surveys with filtering and pagination, oldest first
func (r *GormSurveyRepository) List(ctx context.Context, filter SurveyFilter) ([]models.Survey, int64, error) {
	var scopes []Scope
	if filter.OwnerID != nil {
		scopes = append(scopes, Where("user_id = ?", *filter.OwnerID))
	}
	if filter.OnlyAvailable {
		scopes = append(scopes, Where("available = ?", true))
	}
	if filter.Name != "" {
		scopes = append(scopes, database.Contains("name", filter.Name))
	}
	if filter.Description != "" {
		scopes = append(scopes, database.Contains("description", filter.Description))
	}

	total, err := r.surveys.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}

	offset, limit := pageOf(filter.Page, filter.PageSize)
	scopes = append(scopes,
		OrderBy("created_at ASC"),
		database.Paginate(utils.PaginationParams{Offset: offset, Limit: limit}),
	)
	surveys, err := r.surveys.List(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	return surveys, total, nil
}

func (r *GormSurveyRepository) Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.Survey, error) {
	return r.surveys.Update(ctx, changes, byID(id))
}

// Delete removes the survey with its attributes, answers and answer attributes
func (r *GormSurveyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := NewStore[models.Survey](tx).GetOne(ctx, byID(id)); err != nil {
			return err
		}

		var answerIDs []uuid.UUID
		if err := tx.Model(&models.Answer{}).Where("survey_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return translateError(err)
		}
		if err := deleteAnswers(tx, answerIDs); err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.SurveyAttribute{}).Error; err != nil {
			return translateError(err)
		}
		return translateError(tx.Where("id = ?", id).Delete(&models.Survey{}).Error)
	})
}

func (r *GormSurveyRepository) FindAttribute(ctx context.Context, id uuid.UUID) (*models.SurveyAttribute, error) {
	return r.attributes.GetOne(ctx, byID(id))
}

func (r *GormSurveyRepository) FindAttributesByIDs(ctx context.Context, surveyID uuid.UUID, ids []uuid.UUID) ([]models.SurveyAttribute, error) {
	if len(ids) == 0 {
		return []models.SurveyAttribute{}, nil
	}
	return r.attributes.List(ctx, Where("survey_id = ? AND id IN ?", surveyID, ids))
}

func (r *GormSurveyRepository) UpdateAttribute(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.SurveyAttribute, error) {
	return r.attributes.Update(ctx, changes, byID(id))
}

// DeleteAttribute removes the attribute and every answer attribute referencing it
func (r *GormSurveyRepository) DeleteAttribute(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := NewStore[models.SurveyAttribute](tx).GetOne(ctx, byID(id)); err != nil {
			return err
		}
		if err := tx.Where("survey_attribute_id = ?", id).Delete(&models.AnswerAttribute{}).Error; err != nil {
			return translateError(err)
		}
		return translateError(tx.Where("id = ?", id).Delete(&models.SurveyAttribute{}).Error)
	})
}

// preloadOrdered preloads a has-many association sorted by position
func preloadOrdered(association string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}
}
