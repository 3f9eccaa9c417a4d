package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/middleware"
	"github.com/yukikurage/survey-api/internal/services"
	"github.com/yukikurage/survey-api/internal/validation"
)

// bindRequest binds the request body and answers 422 when it is malformed or invalid.
func bindRequest(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and answers 422 when they are invalid.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	if details, ok := validation.Details(err); ok {
		apierrors.UnprocessableEntity(c, "Validation failed", details)
		return
	}
	apierrors.UnprocessableEntity(c, "Malformed request body", map[string]string{"body": err.Error()})
}

// uuidParam parses the named path parameter, answering 422 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.UnprocessableEntity(c, "Validation failed", map[string]string{name: "uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// requesterID is the authenticated user's ID or uuid.Nil for anonymous requests.
func requesterID(c *gin.Context) uuid.UUID {
	userID, _ := middleware.GetUserID(c)
	return userID
}

// respondServiceError maps service errors onto the API error envelope.
func respondServiceError(c *gin.Context, err error) {
	var attrsNotFound *services.AttributesNotFoundError

	switch {
	case errors.As(err, &attrsNotFound):
		apierrors.NotFoundWithDetails(c, "Got not exist survey attributes", gin.H{"ids": attrsNotFound.IDs})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrVerificationNotFound),
		errors.Is(err, services.ErrSurveyNotFound),
		errors.Is(err, services.ErrSurveyAttributeNotFound),
		errors.Is(err, services.ErrAnswerNotFound):
		apierrors.NotFound(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrAnswerAlreadyExists):
		apierrors.Conflict(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrIncorrectPassword):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidCredentials, "Provided password is incorrect")
	case errors.Is(err, services.ErrInactiveUser):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInactiveUser, "Inactive user")
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidToken, "Invalid token")
	case errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrSamePassword):
		apierrors.BadRequest(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrInvalidSurveyName),
		errors.Is(err, services.ErrInvalidInput):
		apierrors.UnprocessableEntity(c, capitalize(err.Error()), nil)
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		apierrors.InternalError(c, "")
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
