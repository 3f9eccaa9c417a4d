package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
)

var (
	ErrAnswerNotFound      = errors.New("answer not found")
	ErrAnswerAlreadyExists = errors.New("answer already exists")
)

// AnswerService provides business logic for answering surveys.
type AnswerService struct {
	repos *repository.Repositories
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(repos *repository.Repositories) *AnswerService {
	return &AnswerService{repos: repos}
}

// AnswerAttributeInput answers one survey attribute.
type AnswerAttributeInput struct {
	SurveyAttributeID uuid.UUID
	Value             string
}

// CreateAnswerInput represents one user's answers to a survey.
type CreateAnswerInput struct {
	Available  *bool
	Attributes []AnswerAttributeInput
}

// CreateAnswer records answererID's single answer to surveyID.
func (s *AnswerService) CreateAnswer(ctx context.Context, answererID, surveyID uuid.UUID, input CreateAnswerInput) (*models.Answer, error) {
	answer := &models.Answer{
		SurveyID:   surveyID,
		UserID:     answererID,
		Available:  boolOr(input.Available, true),
		Attributes: make([]models.AnswerAttribute, len(input.Attributes)),
	}
	for i, attr := range input.Attributes {
		answer.Attributes[i] = models.AnswerAttribute{
			SurveyAttributeID: attr.SurveyAttributeID,
			Value:             attr.Value,
		}
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := validateAnswer(ctx, tx, answer); err != nil {
			return err
		}

		if err := tx.Answers.Create(ctx, answer); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return ErrAnswerAlreadyExists
			case errors.Is(err, repository.ErrForeignKey):
				return ErrSurveyNotFound
			default:
				return fmt.Errorf("failed to create answer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// validateAnswer checks, in order: the survey exists, it is open to the
// answerer, no answer exists yet, and every attribute belongs to the survey.
func validateAnswer(ctx context.Context, tx *repository.Repositories, answer *models.Answer) error {
	survey, err := tx.Surveys.FindByID(ctx, answer.SurveyID, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to find survey: %w", err)
	}

	owner := survey.IsOwnedBy(answer.UserID)
	if !survey.Available && !owner {
		return fmt.Errorf("%w: survey is not available", ErrForbidden)
	}

	exists, err := tx.Answers.Exists(ctx, answer.UserID, answer.SurveyID)
	if err != nil {
		return fmt.Errorf("failed to check answer: %w", err)
	}
	if exists {
		return ErrAnswerAlreadyExists
	}

	known := make(map[uuid.UUID]bool, len(survey.Attributes))
	for _, attr := range survey.Attributes {
		// hidden questions cannot be answered by anyone but the owner
		known[attr.ID] = attr.Available || owner
	}

	seen := make(map[uuid.UUID]bool, len(answer.Attributes))
	var unknown []uuid.UUID
	for _, attr := range answer.Attributes {
		if seen[attr.SurveyAttributeID] {
			return fmt.Errorf("%w: survey attribute %s answered twice", ErrInvalidInput, attr.SurveyAttributeID)
		}
		seen[attr.SurveyAttributeID] = true
		if !known[attr.SurveyAttributeID] {
			unknown = append(unknown, attr.SurveyAttributeID)
		}
	}
	if len(unknown) > 0 {
		return newAttributesNotFoundError(unknown)
	}

	for _, attr := range survey.Attributes {
		if attr.Required && known[attr.ID] && !seen[attr.ID] {
			return fmt.Errorf("%w: required survey attribute %s is not answered", ErrInvalidInput, attr.ID)
		}
	}
	return nil
}

// GetAnswer returns an answer. An unavailable answer is visible only to its
// author and to the owner of the survey.
func (s *AnswerService) GetAnswer(ctx context.Context, id, requesterID uuid.UUID) (*models.Answer, error) {
	answer, err := s.findAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	if answer.Available || (requesterID != uuid.Nil && answer.UserID == requesterID) {
		return answer, nil
	}

	if requesterID != uuid.Nil {
		survey, err := s.repos.Surveys.FindByID(ctx, answer.SurveyID, false)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to find survey: %w", err)
		}
		if err == nil && survey.IsOwnedBy(requesterID) {
			return answer, nil
		}
	}
	return nil, fmt.Errorf("%w: not the author of this answer", ErrForbidden)
}

// DeleteAnswer removes an answer. Only its author may delete it.
func (s *AnswerService) DeleteAnswer(ctx context.Context, id, requesterID uuid.UUID) error {
	answer, err := s.findAnswer(ctx, id)
	if err != nil {
		return err
	}
	if answer.UserID != requesterID {
		return fmt.Errorf("%w: not the author of this answer", ErrForbidden)
	}

	if err := s.repos.Answers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	return nil
}

func (s *AnswerService) findAnswer(ctx context.Context, id uuid.UUID) (*models.Answer, error) {
	answer, err := s.repos.Answers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to find answer: %w", err)
	}
	return answer, nil
}
