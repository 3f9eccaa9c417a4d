package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/survey-api/internal/models"
)

// SurveyServiceTestSuite exercises surveys owned by one user and viewed by another
type SurveyServiceTestSuite struct {
	suite.Suite
	env      serviceTestEnv
	owner    *models.User
	stranger *models.User
	ctx      context.Context
}

func (suite *SurveyServiceTestSuite) SetupTest() {
	suite.env = setupServiceTestEnv(suite.T())
	suite.owner = suite.env.registerActive(suite.T(), "owner", "secret123")
	suite.stranger = suite.env.registerActive(suite.T(), "stranger", "secret123")
	suite.ctx = context.Background()
}

func (suite *SurveyServiceTestSuite) createSurvey(name string, attrs ...SurveyAttributeInput) *models.Survey {
	survey, err := suite.env.surveys.CreateSurvey(suite.ctx, suite.owner.ID, CreateSurveyInput{
		Name:        name,
		Description: name + " description",
		Attributes:  attrs,
	})
	suite.Require().NoError(err)
	return survey
}

func (suite *SurveyServiceTestSuite) TestCreateSurvey() {
	survey := suite.createSurvey("Coffee",
		SurveyAttributeInput{Name: "roast", Question: "Which roast?", Required: true},
		SurveyAttributeInput{Name: "origin", Question: "Which origin?"},
	)

	suite.True(survey.Available)
	suite.Require().Len(survey.Attributes, 2)
	suite.Equal(survey.ID, survey.Attributes[0].SurveyID)
	suite.True(survey.Attributes[1].Available)

	_, err := suite.env.surveys.CreateSurvey(suite.ctx, suite.owner.ID, CreateSurveyInput{Name: "  "})
	suite.ErrorIs(err, ErrInvalidSurveyName)
}

func (suite *SurveyServiceTestSuite) TestGetSurvey_HidesUnavailableAttributes() {
	hidden := false
	survey := suite.createSurvey("Coffee",
		SurveyAttributeInput{Name: "roast"},
		SurveyAttributeInput{Name: "secret", Available: &hidden},
	)

	asOwner, err := suite.env.surveys.GetSurvey(suite.ctx, survey.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Len(asOwner.Attributes, 2)

	asStranger, err := suite.env.surveys.GetSurvey(suite.ctx, survey.ID, suite.stranger.ID)
	suite.Require().NoError(err)
	suite.Require().Len(asStranger.Attributes, 1)
	suite.Equal("roast", asStranger.Attributes[0].Name)

	anonymous, err := suite.env.surveys.GetSurvey(suite.ctx, survey.ID, uuid.Nil)
	suite.Require().NoError(err)
	suite.Len(anonymous.Attributes, 1)

	_, err = suite.env.surveys.GetSurvey(suite.ctx, uuid.New(), suite.owner.ID)
	suite.ErrorIs(err, ErrSurveyNotFound)
}

func (suite *SurveyServiceTestSuite) TestUnavailableSurvey() {
	survey := suite.createSurvey("Coffee", SurveyAttributeInput{Name: "roast"})
	closed := false
	_, err := suite.env.surveys.UpdateSurvey(suite.ctx, survey.ID, suite.owner.ID, UpdateSurveyInput{Available: &closed})
	suite.Require().NoError(err)

	_, err = suite.env.surveys.GetSurvey(suite.ctx, survey.ID, suite.stranger.ID)
	suite.ErrorIs(err, ErrForbidden)

	_, err = suite.env.surveys.GetSurveyAttribute(suite.ctx, survey.Attributes[0].ID, suite.stranger.ID)
	suite.ErrorIs(err, ErrForbidden)

	_, total, err := suite.env.surveys.ListSurveys(suite.ctx, 1, 10)
	suite.Require().NoError(err)
	suite.Zero(total)

	_, total, err = suite.env.surveys.ListUserSurveys(suite.ctx, suite.owner.ID, suite.owner.ID, 1, 10)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)

	_, total, err = suite.env.surveys.ListUserSurveys(suite.ctx, suite.owner.ID, suite.stranger.ID, 1, 10)
	suite.Require().NoError(err)
	suite.Zero(total)

	_, _, err = suite.env.surveys.ListUserSurveys(suite.ctx, uuid.New(), suite.owner.ID, 1, 10)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *SurveyServiceTestSuite) TestUpdateAndDelete_RequireOwnership() {
	survey := suite.createSurvey("Coffee", SurveyAttributeInput{Name: "roast"})
	name := "Tea"

	_, err := suite.env.surveys.UpdateSurvey(suite.ctx, survey.ID, suite.stranger.ID, UpdateSurveyInput{Name: &name})
	suite.ErrorIs(err, ErrForbidden)

	_, err = suite.env.surveys.UpdateSurvey(suite.ctx, uuid.New(), suite.owner.ID, UpdateSurveyInput{Name: &name})
	suite.ErrorIs(err, ErrSurveyNotFound)

	updated, err := suite.env.surveys.UpdateSurvey(suite.ctx, survey.ID, suite.owner.ID, UpdateSurveyInput{Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Tea", updated.Name)
	suite.Equal("Coffee description", updated.Description)

	question := "How dark?"
	_, err = suite.env.surveys.UpdateSurveyAttribute(suite.ctx, survey.Attributes[0].ID, suite.stranger.ID, UpdateSurveyAttributeInput{Question: &question})
	suite.ErrorIs(err, ErrForbidden)

	attr, err := suite.env.surveys.UpdateSurveyAttribute(suite.ctx, survey.Attributes[0].ID, suite.owner.ID, UpdateSurveyAttributeInput{Question: &question})
	suite.Require().NoError(err)
	suite.Equal("How dark?", attr.Question)

	suite.ErrorIs(suite.env.surveys.DeleteSurveyAttribute(suite.ctx, attr.ID, suite.stranger.ID), ErrForbidden)
	suite.Require().NoError(suite.env.surveys.DeleteSurveyAttribute(suite.ctx, attr.ID, suite.owner.ID))
	_, err = suite.env.surveys.GetSurveyAttribute(suite.ctx, attr.ID, suite.owner.ID)
	suite.ErrorIs(err, ErrSurveyAttributeNotFound)

	suite.ErrorIs(suite.env.surveys.DeleteSurvey(suite.ctx, survey.ID, suite.stranger.ID), ErrForbidden)
	suite.Require().NoError(suite.env.surveys.DeleteSurvey(suite.ctx, survey.ID, suite.owner.ID))
	suite.ErrorIs(suite.env.surveys.DeleteSurvey(suite.ctx, survey.ID, suite.owner.ID), ErrSurveyNotFound)
}

func (suite *SurveyServiceTestSuite) TestFilterSurveys() {
	suite.createSurvey("Coffee habits")
	suite.createSurvey("Tea habits")
	suite.createSurvey("Coffee origins")

	surveys, total, err := suite.env.surveys.FilterSurveys(suite.ctx, FilterSurveysInput{Name: "Coffee", Description: "habits"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(surveys, 1)
	suite.Equal("Coffee habits", surveys[0].Name)

	_, total, err = suite.env.surveys.FilterSurveys(suite.ctx, FilterSurveysInput{Name: "coffee"})
	suite.Require().NoError(err)
	suite.Zero(total)
}

func TestSurveyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SurveyServiceTestSuite))
}

func TestAttributesNotFoundError(t *testing.T) {
	a := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	b := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")

	err := newAttributesNotFoundError([]uuid.UUID{a, b})
	require.ErrorIs(t, err, ErrSurveyAttributeNotFound)
	assert.Equal(t, []uuid.UUID{b, a}, err.IDs)
	assert.Contains(t, err.Error(), b.String()+", "+a.String())
}
