package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByLogin finds a user whose username or email equals login
	FindByLogin(ctx context.Context, login string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Update applies column changes to a user and returns the updated row
	Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.User, error)

	// Delete removes a user with everything it owns and returns its last state
	Delete(ctx context.Context, id uuid.UUID) (*models.User, error)

	// List retrieves users with filtering and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
}

// UserFilter holds substring filters for listing users. Empty fields are ignored.
type UserFilter struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Page      int
	PageSize  int
}

// VerificationRepository defines the interface for email confirmation tokens
type VerificationRepository interface {
	Create(ctx context.Context, verification *models.Verification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Verification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SurveyRepository defines the interface for survey data access
type SurveyRepository interface {
	// Create inserts a survey and its attributes
	Create(ctx context.Context, survey *models.Survey) error

	// FindByID finds a survey by ID; withAttributes preloads its ordered attributes
	FindByID(ctx context.Context, id uuid.UUID, withAttributes bool) (*models.Survey, error)

	// List retrieves surveys with filtering and pagination
	List(ctx context.Context, filter SurveyFilter) ([]models.Survey, int64, error)

	// Update applies column changes to a survey
	Update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.Survey, error)

	// Delete removes a survey, its attributes and every answer to it
	Delete(ctx context.Context, id uuid.UUID) error

	// FindAttribute finds a survey attribute by ID
	FindAttribute(ctx context.Context, id uuid.UUID) (*models.SurveyAttribute, error)

	// FindAttributesByIDs returns the attributes of surveyID among ids
	FindAttributesByIDs(ctx context.Context, surveyID uuid.UUID, ids []uuid.UUID) ([]models.SurveyAttribute, error)

	// UpdateAttribute applies column changes to a survey attribute
	UpdateAttribute(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.SurveyAttribute, error)

	// DeleteAttribute removes a survey attribute and the answers given to it
	DeleteAttribute(ctx context.Context, id uuid.UUID) error
}

// SurveyFilter holds filtering options for listing surveys
type SurveyFilter struct {
	OwnerID       *uuid.UUID
	OnlyAvailable bool
	Name          string
	Description   string
	Page          int
	PageSize      int
}

// AnswerRepository defines the interface for answer data access
type AnswerRepository interface {
	// Create inserts an answer and its attributes
	Create(ctx context.Context, answer *models.Answer) error

	// FindByID finds an answer by ID with its ordered attributes
	FindByID(ctx context.Context, id uuid.UUID) (*models.Answer, error)

	// Exists reports whether userID already answered surveyID
	Exists(ctx context.Context, userID, surveyID uuid.UUID) (bool, error)

	// Delete removes an answer and its attributes
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmailDeliveryRepository defines the interface for the email outbox
type EmailDeliveryRepository interface {
	Create(ctx context.Context, delivery *models.EmailDelivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EmailDelivery, error)

	// ListPending returns up to limit pending deliveries, oldest first
	ListPending(ctx context.Context, limit int) ([]models.EmailDelivery, error)

	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Verifications VerificationRepository
	Surveys       SurveyRepository
	Answers       AnswerRepository
	Emails        EmailDeliveryRepository
}

// New creates the repository set for db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Verifications: NewVerificationRepository(db),
		Surveys:       NewSurveyRepository(db),
		Answers:       NewAnswerRepository(db),
		Emails:        NewEmailDeliveryRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func byID(id uuid.UUID) Scope {
	return Where("id = ?", id)
}

func pageOf(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	return (page - 1) * pageSize, pageSize
}
