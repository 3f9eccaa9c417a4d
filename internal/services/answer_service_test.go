package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/survey-api/internal/models"
)

type answerFixture struct {
	env      serviceTestEnv
	owner    *models.User
	answerer *models.User
	survey   *models.Survey
}

func setupAnswerFixture(t *testing.T) answerFixture {
	t.Helper()

	env := setupServiceTestEnv(t)
	owner := env.registerActive(t, "owner", "secret123")
	answerer := env.registerActive(t, "answerer", "secret123")
	survey, err := env.surveys.CreateSurvey(context.Background(), owner.ID, CreateSurveyInput{
		Name: "Coffee",
		Attributes: []SurveyAttributeInput{
			{Name: "roast", Question: "Which roast?", Required: true},
			{Name: "origin", Question: "Which origin?"},
		},
	})
	require.NoError(t, err)

	return answerFixture{env: env, owner: owner, answerer: answerer, survey: survey}
}

func (f answerFixture) input(values ...string) CreateAnswerInput {
	input := CreateAnswerInput{}
	for i, value := range values {
		input.Attributes = append(input.Attributes, AnswerAttributeInput{SurveyAttributeID: f.survey.Attributes[i].ID, Value: value})
	}
	return input
}

func TestAnswerService_CreateOncePerUser(t *testing.T) {
	f := setupAnswerFixture(t)
	ctx := context.Background()

	answer, err := f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, f.input("dark", "Kenya"))
	require.NoError(t, err)
	assert.True(t, answer.Available)
	require.Len(t, answer.Attributes, 2)
	assert.Equal(t, answer.ID, answer.Attributes[0].AnswerID)

	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, f.input("light"))
	assert.ErrorIs(t, err, ErrAnswerAlreadyExists)

	require.NoError(t, f.env.answers.DeleteAnswer(ctx, answer.ID, f.answerer.ID))

	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, f.input("light"))
	assert.NoError(t, err)
}

func TestAnswerService_CreateValidation(t *testing.T) {
	f := setupAnswerFixture(t)
	ctx := context.Background()

	_, err := f.env.answers.CreateAnswer(ctx, f.answerer.ID, uuid.New(), f.input("dark"))
	assert.ErrorIs(t, err, ErrSurveyNotFound)

	unknownA, unknownB := uuid.New(), uuid.New()
	input := f.input("dark")
	input.Attributes = append(input.Attributes,
		AnswerAttributeInput{SurveyAttributeID: unknownA, Value: "?"},
		AnswerAttributeInput{SurveyAttributeID: unknownB, Value: "?"},
	)
	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, input)
	require.ErrorIs(t, err, ErrSurveyAttributeNotFound)
	var notFound *AttributesNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.ElementsMatch(t, []uuid.UUID{unknownA, unknownB}, notFound.IDs)

	// an attribute from another survey is unknown here as well
	other, err := f.env.surveys.CreateSurvey(ctx, f.owner.ID, CreateSurveyInput{Name: "Tea", Attributes: []SurveyAttributeInput{{Name: "leaf"}}})
	require.NoError(t, err)
	input = f.input("dark")
	input.Attributes = append(input.Attributes, AnswerAttributeInput{SurveyAttributeID: other.Attributes[0].ID, Value: "green"})
	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, input)
	assert.ErrorIs(t, err, ErrSurveyAttributeNotFound)

	// the required roast question is skipped
	input = CreateAnswerInput{Attributes: []AnswerAttributeInput{{SurveyAttributeID: f.survey.Attributes[1].ID, Value: "Kenya"}}}
	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, input)
	assert.ErrorIs(t, err, ErrInvalidInput)

	duplicate := f.input("dark")
	duplicate.Attributes = append(duplicate.Attributes, duplicate.Attributes[0])
	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, duplicate)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Answer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnswerService_UnavailableSurvey(t *testing.T) {
	f := setupAnswerFixture(t)
	ctx := context.Background()
	closed := false
	_, err := f.env.surveys.UpdateSurvey(ctx, f.survey.ID, f.owner.ID, UpdateSurveyInput{Available: &closed})
	require.NoError(t, err)

	_, err = f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, f.input("dark"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.env.answers.CreateAnswer(ctx, f.owner.ID, f.survey.ID, f.input("dark"))
	assert.NoError(t, err)
}

func TestAnswerService_GetAnswerVisibility(t *testing.T) {
	f := setupAnswerFixture(t)
	ctx := context.Background()
	stranger := f.env.registerActive(t, "stranger", "secret123")

	hidden := false
	input := f.input("dark")
	input.Available = &hidden
	answer, err := f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, input)
	require.NoError(t, err)

	got, err := f.env.answers.GetAnswer(ctx, answer.ID, f.answerer.ID)
	require.NoError(t, err)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "dark", got.Attributes[0].Value)

	_, err = f.env.answers.GetAnswer(ctx, answer.ID, f.owner.ID)
	assert.NoError(t, err)

	_, err = f.env.answers.GetAnswer(ctx, answer.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.env.answers.GetAnswer(ctx, answer.ID, uuid.Nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.env.answers.GetAnswer(ctx, uuid.New(), f.answerer.ID)
	assert.ErrorIs(t, err, ErrAnswerNotFound)

	visible, err := f.env.answers.CreateAnswer(ctx, stranger.ID, f.survey.ID, f.input("light"))
	require.NoError(t, err)
	_, err = f.env.answers.GetAnswer(ctx, visible.ID, uuid.Nil)
	assert.NoError(t, err)
}

func TestAnswerService_DeleteAnswer(t *testing.T) {
	f := setupAnswerFixture(t)
	ctx := context.Background()

	answer, err := f.env.answers.CreateAnswer(ctx, f.answerer.ID, f.survey.ID, f.input("dark", "Kenya"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.env.answers.DeleteAnswer(ctx, answer.ID, f.owner.ID), ErrForbidden)
	assert.ErrorIs(t, f.env.answers.DeleteAnswer(ctx, uuid.New(), f.answerer.ID), ErrAnswerNotFound)

	require.NoError(t, f.env.answers.DeleteAnswer(ctx, answer.ID, f.answerer.ID))

	var attrs int64
	require.NoError(t, f.env.db.Model(&models.AnswerAttribute{}).Count(&attrs).Error)
	assert.Zero(t, attrs)
}
