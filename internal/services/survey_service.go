package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
)

var (
	ErrSurveyNotFound          = errors.New("survey not found")
	ErrSurveyAttributeNotFound = errors.New("survey attribute not found")
	ErrInvalidSurveyName       = errors.New("survey name cannot be empty")
)

// SurveyService provides business logic for surveys and their attributes.
// A requester of uuid.Nil is anonymous.
type SurveyService struct {
	repos *repository.Repositories
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(repos *repository.Repositories) *SurveyService {
	return &SurveyService{repos: repos}
}

// SurveyAttributeInput describes one question of a new survey.
type SurveyAttributeInput struct {
	Name      string
	Question  string
	Required  bool
	Available *bool
}

// CreateSurveyInput represents parameters to create a new survey.
type CreateSurveyInput struct {
	Name        string
	Description string
	Available   *bool
	Attributes  []SurveyAttributeInput
}

// CreateSurvey inserts a survey owned by ownerID together with its attributes.
func (s *SurveyService) CreateSurvey(ctx context.Context, ownerID uuid.UUID, input CreateSurveyInput) (*models.Survey, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidSurveyName
	}

	survey := &models.Survey{
		Name:        input.Name,
		Description: input.Description,
		Available:   boolOr(input.Available, true),
		UserID:      ownerID,
		Attributes:  make([]models.SurveyAttribute, len(input.Attributes)),
	}
	for i, attr := range input.Attributes {
		survey.Attributes[i] = models.SurveyAttribute{
			Name:      attr.Name,
			Question:  attr.Question,
			Required:  attr.Required,
			Available: boolOr(attr.Available, true),
		}
	}

	if err := s.repos.Surveys.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	return survey, nil
}

// GetSurvey returns a survey with its attributes. Non-owners cannot see an
// unavailable survey and only see available attributes.
func (s *SurveyService) GetSurvey(ctx context.Context, id, requesterID uuid.UUID) (*models.Survey, error) {
	survey, err := s.findSurvey(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if survey.IsOwnedBy(requesterID) {
		return survey, nil
	}
	if !survey.Available {
		return nil, fmt.Errorf("%w: survey is not available", ErrForbidden)
	}

	visible := survey.Attributes[:0]
	for _, attr := range survey.Attributes {
		if attr.Available {
			visible = append(visible, attr)
		}
	}
	survey.Attributes = visible
	return survey, nil
}

// ListSurveys lists available surveys.
func (s *SurveyService) ListSurveys(ctx context.Context, page, pageSize int) ([]models.Survey, int64, error) {
	return s.list(ctx, repository.SurveyFilter{OnlyAvailable: true, Page: page, PageSize: pageSize})
}

// ListUserSurveys lists the surveys of ownerID. Unavailable ones are included
// only when the owner asks.
func (s *SurveyService) ListUserSurveys(ctx context.Context, ownerID, requesterID uuid.UUID, page, pageSize int) ([]models.Survey, int64, error) {
	if _, err := s.repos.Users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("failed to find user: %w", err)
	}

	return s.list(ctx, repository.SurveyFilter{
		OwnerID:       &ownerID,
		OnlyAvailable: ownerID != requesterID,
		Page:          page,
		PageSize:      pageSize,
	})
}

// FilterSurveysInput holds case-sensitive substring criteria, combined with AND.
type FilterSurveysInput struct {
	Name        string
	Description string
	Page        int
	PageSize    int
}

// FilterSurveys searches available surveys by name and description.
func (s *SurveyService) FilterSurveys(ctx context.Context, input FilterSurveysInput) ([]models.Survey, int64, error) {
	return s.list(ctx, repository.SurveyFilter{
		OnlyAvailable: true,
		Name:          input.Name,
		Description:   input.Description,
		Page:          input.Page,
		PageSize:      input.PageSize,
	})
}

// UpdateSurveyInput holds optional survey changes.
type UpdateSurveyInput struct {
	Name        *string
	Description *string
	Available   *bool
}

// UpdateSurvey applies a partial update. Only the owner may update.
func (s *SurveyService) UpdateSurvey(ctx context.Context, id, requesterID uuid.UUID, input UpdateSurveyInput) (*models.Survey, error) {
	if _, err := s.ownedSurvey(ctx, id, requesterID); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidSurveyName
		}
		changes["name"] = *input.Name
	}
	if input.Description != nil {
		changes["description"] = *input.Description
	}
	if input.Available != nil {
		changes["available"] = *input.Available
	}

	survey, err := s.repos.Surveys.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}
	return survey, nil
}

// DeleteSurvey removes a survey with its attributes and answers. Only the owner may delete.
func (s *SurveyService) DeleteSurvey(ctx context.Context, id, requesterID uuid.UUID) error {
	if _, err := s.ownedSurvey(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.repos.Surveys.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	return nil
}

// GetSurveyAttribute returns one attribute. Non-owners cannot see attributes
// that are unavailable or belong to an unavailable survey.
func (s *SurveyService) GetSurveyAttribute(ctx context.Context, id, requesterID uuid.UUID) (*models.SurveyAttribute, error) {
	attr, survey, err := s.findAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	if !survey.IsOwnedBy(requesterID) && (!survey.Available || !attr.Available) {
		return nil, fmt.Errorf("%w: survey attribute is not available", ErrForbidden)
	}
	return attr, nil
}

// UpdateSurveyAttributeInput holds optional attribute changes.
type UpdateSurveyAttributeInput struct {
	Name      *string
	Question  *string
	Required  *bool
	Available *bool
}

// UpdateSurveyAttribute applies a partial update. Only the survey owner may update.
func (s *SurveyService) UpdateSurveyAttribute(ctx context.Context, id, requesterID uuid.UUID, input UpdateSurveyAttributeInput) (*models.SurveyAttribute, error) {
	_, survey, err := s.findAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	if !survey.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: not the survey owner", ErrForbidden)
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		changes["name"] = *input.Name
	}
	if input.Question != nil {
		changes["question"] = *input.Question
	}
	if input.Required != nil {
		changes["required"] = *input.Required
	}
	if input.Available != nil {
		changes["available"] = *input.Available
	}

	attr, err := s.repos.Surveys.UpdateAttribute(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyAttributeNotFound
		}
		return nil, fmt.Errorf("failed to update survey attribute: %w", err)
	}
	return attr, nil
}

// DeleteSurveyAttribute removes an attribute and the answers given to it.
func (s *SurveyService) DeleteSurveyAttribute(ctx context.Context, id, requesterID uuid.UUID) error {
	_, survey, err := s.findAttribute(ctx, id)
	if err != nil {
		return err
	}
	if !survey.IsOwnedBy(requesterID) {
		return fmt.Errorf("%w: not the survey owner", ErrForbidden)
	}

	if err := s.repos.Surveys.DeleteAttribute(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSurveyAttributeNotFound
		}
		return fmt.Errorf("failed to delete survey attribute: %w", err)
	}
	return nil
}

func (s *SurveyService) list(ctx context.Context, filter repository.SurveyFilter) ([]models.Survey, int64, error) {
	surveys, total, err := s.repos.Surveys.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, total, nil
}

func (s *SurveyService) findSurvey(ctx context.Context, id uuid.UUID, withAttributes bool) (*models.Survey, error) {
	survey, err := s.repos.Surveys.FindByID(ctx, id, withAttributes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to find survey: %w", err)
	}
	return survey, nil
}

func (s *SurveyService) ownedSurvey(ctx context.Context, id, requesterID uuid.UUID) (*models.Survey, error) {
	survey, err := s.findSurvey(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !survey.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: not the survey owner", ErrForbidden)
	}
	return survey, nil
}

func (s *SurveyService) findAttribute(ctx context.Context, id uuid.UUID) (*models.SurveyAttribute, *models.Survey, error) {
	attr, err := s.repos.Surveys.FindAttribute(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSurveyAttributeNotFound
		}
		return nil, nil, fmt.Errorf("failed to find survey attribute: %w", err)
	}

	survey, err := s.findSurvey(ctx, attr.SurveyID, false)
	if err != nil {
		return nil, nil, err
	}
	return attr, survey, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
