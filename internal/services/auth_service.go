package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/auth"
	"github.com/yukikurage/survey-api/internal/mailer"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectPassword    = errors.New("provided password is incorrect")
	ErrInactiveUser         = errors.New("inactive user")
	ErrInvalidToken         = errors.New("invalid token")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrSamePassword         = errors.New("new password must differ from the current one")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	repos    *repository.Repositories
	tokens   *auth.TokenService
	renderer mailer.Renderer
	notifier MailNotifier
}

// NewAuthService creates a new AuthService.
func NewAuthService(repos *repository.Repositories, tokens *auth.TokenService, renderer mailer.Renderer, notifier MailNotifier) *AuthService {
	return &AuthService{
		repos:    repos,
		tokens:   tokens,
		renderer: renderer,
		notifier: notifierOrNoop(notifier),
	}
}

// Authenticate resolves login as a username or an email and verifies the password.
// It does not check whether the user is active.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	return authenticate(ctx, s.repos.Users, login, password)
}

func authenticate(ctx context.Context, users repository.UserRepository, login, password string) (*models.User, error) {
	user, err := users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// Login authenticates an active user and issues an access token.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInactiveUser
	}

	token, err := s.IssueAccessToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueAccessToken signs an access token for userID.
func (s *AuthService) IssueAccessToken(userID uuid.UUID) (string, error) {
	token, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return token, nil
}

// ResolveAccessToken verifies token and re-fetches the user it names.
func (s *AuthService) ResolveAccessToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ConfirmRegistration activates the user owning the verification and consumes it.
func (s *AuthService) ConfirmRegistration(ctx context.Context, verificationID uuid.UUID) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		verification, err := tx.Verifications.FindByID(ctx, verificationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrVerificationNotFound
			}
			return fmt.Errorf("failed to find verification: %w", err)
		}

		if _, err := tx.Users.Update(ctx, verification.UserID, map[string]interface{}{"is_active": true}); err != nil {
			return fmt.Errorf("failed to activate user: %w", err)
		}
		if err := tx.Verifications.Delete(ctx, verification.ID); err != nil {
			return fmt.Errorf("failed to delete verification: %w", err)
		}
		return nil
	})
}

// RequestPasswordReset mails a reset token to the user registered with email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.tokens.IssuePasswordResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	msg, err := s.renderer.PasswordReset(user.Email, user.Username, token)
	if err != nil {
		return err
	}
	if _, err := mailer.Enqueue(ctx, s.repos.Emails, models.EmailKindPasswordReset, msg); err != nil {
		return err
	}

	s.notifier.Nudge()
	return nil
}

// ResetPassword verifies a reset token and replaces the password of its user.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.ParsePasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return ErrInactiveUser
	}

	return s.setPassword(ctx, user.ID, newPassword)
}

// ChangePasswordInput holds the fields of a password change request.
type ChangePasswordInput struct {
	CurrentPassword   string
	NewPassword       string
	NewPasswordRepeat string
}

// ChangePassword replaces the password of user after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, input ChangePasswordInput) error {
	if !auth.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		return ErrIncorrectPassword
	}
	if input.NewPassword == input.CurrentPassword {
		return ErrSamePassword
	}
	if input.NewPassword != input.NewPasswordRepeat {
		return ErrPasswordMismatch
	}

	return s.setPassword(ctx, user.ID, input.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.repos.Users.Update(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
