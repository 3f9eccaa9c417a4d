package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/database"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/utils"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db    *gorm.DB
	users *Store[models.User]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db, users: NewStore[models.User](db)}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.users.Insert(ctx, user)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.users.GetOne(ctx, byID(id))
}

// FindByLogin finds a user by username or email
func (r *GormUserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.users.GetOne(ctx, Where("username = ? OR email = ?", login, login))
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.users.GetOne(ctx, Where("email = ?", email))
}

func (r *GormUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return r.users.Exists(ctx, Where("username = ? OR email = ?", username, email))
}

func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.User, error) {
	return r.users.Update(ctx, changes, byID(id))
}

// Delete removes the user, its verification, its surveys (with their answers)
// and its own answers in one transaction.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var deleted *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := NewStore[models.User](tx)
		user, err := users.GetOne(ctx, byID(id))
		if err != nil {
			return err
		}

		var surveyIDs []uuid.UUID
		if err := tx.Model(&models.Survey{}).Where("user_id = ?", id).Pluck("id", &surveyIDs).Error; err != nil {
			return translateError(err)
		}

		answers := tx.Model(&models.Answer{}).Where("user_id = ?", id)
		if len(surveyIDs) > 0 {
			answers = answers.Or("survey_id IN ?", surveyIDs)
		}
		var answerIDs []uuid.UUID
		if err := answers.Pluck("id", &answerIDs).Error; err != nil {
			return translateError(err)
		}

		if err := deleteAnswers(tx, answerIDs); err != nil {
			return err
		}
		if len(surveyIDs) > 0 {
			if err := tx.Where("survey_id IN ?", surveyIDs).Delete(&models.SurveyAttribute{}).Error; err != nil {
				return translateError(err)
			}
			if err := tx.Where("id IN ?", surveyIDs).Delete(&models.Survey{}).Error; err != nil {
				return translateError(err)
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Verification{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return translateError(err)
		}

		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// List retrieves users matching every non-empty filter field, oldest first
func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	var scopes []Scope
	for _, f := range []struct{ column, value string }{
		{"username", filter.Username},
		{"email", filter.Email},
		{"first_name", filter.FirstName},
		{"last_name", filter.LastName},
	} {
		if f.value != "" {
			scopes = append(scopes, database.Contains(f.column, f.value))
		}
	}

	total, err := r.users.Count(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}

	offset, limit := pageOf(filter.Page, filter.PageSize)
	scopes = append(scopes,
		OrderBy("joined_at ASC"),
		database.Paginate(utils.PaginationParams{Offset: offset, Limit: limit}),
	)
	users, err := r.users.List(ctx, scopes...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// deleteAnswers removes answers and their attributes. tx must already be a transaction.
func deleteAnswers(tx *gorm.DB, answerIDs []uuid.UUID) error {
	if len(answerIDs) == 0 {
		return nil
	}
	if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.AnswerAttribute{}).Error; err != nil {
		return translateError(err)
	}
	if err := tx.Where("id IN ?", answerIDs).Delete(&models.Answer{}).Error; err != nil {
		return translateError(err)
	}
	return nil
}
