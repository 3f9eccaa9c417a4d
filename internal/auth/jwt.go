// Package auth holds password hashing and the signed tokens used for
// API access and password reset.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/config"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or subject checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are the claims carried by an API access token.
type AccessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// ResetClaims are the claims carried by a password reset token.
type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed JWTs.
type TokenService struct {
	secret        []byte
	method        jwt.SigningMethod
	accessExpire  time.Duration
	resetExpire   time.Duration
	accessSubject string
	resetSubject  string
}

// NewTokenService builds a TokenService from cfg. Unknown algorithms fall back to HS256.
func NewTokenService(cfg *config.Config) *TokenService {
	method := jwt.GetSigningMethod(cfg.TokenEncodeAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		method = jwt.SigningMethodHS256
	}

	return &TokenService{
		secret:        []byte(cfg.SecretKey),
		method:        method,
		accessExpire:  cfg.AccessTokenExpire,
		resetExpire:   cfg.PasswordResetExpire,
		accessSubject: cfg.AccessTokenSubject,
		resetSubject:  cfg.PasswordResetSubject,
	}
}

// IssueAccessToken signs an access token for userID.
func (s *TokenService) IssueAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.accessSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

// ParseAccessToken verifies an access token and returns the user ID it names.
func (s *TokenService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessSubject); err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user_id", ErrInvalidToken)
	}
	return userID, nil
}

// IssuePasswordResetToken signs a short-lived reset token for email. It is not persisted.
func (s *TokenService) IssuePasswordResetToken(email string) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.resetSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetExpire)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

// ParsePasswordResetToken verifies a reset token and returns its email.
func (s *TokenService) ParsePasswordResetToken(tokenString string) (string, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims, s.resetSubject); err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return claims.Email, nil
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, subject string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
