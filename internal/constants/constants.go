package constants

const (
	// ContextKeyUserID is the gin context key holding the authenticated user's ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the gin context key holding the authenticated *models.User.
	ContextKeyUser = "user"
	// ContextKeyRequestID is the gin context key holding the request correlation ID.
	ContextKeyRequestID = "request_id"

	// SessionCookieName names the cookie session used as a token fallback.
	SessionCookieName = "survey_session"
	// SessionKeyAccessToken is the session key storing the issued access token.
	SessionKeyAccessToken = "access_token"

	MinPasswordLength = 8
	MaxPasswordLength = 72

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100

	TokenTypeBearer = "Bearer"

	DateLayout = "2006-01-02"
)
