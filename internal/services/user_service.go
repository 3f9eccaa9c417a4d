package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/auth"
	"github.com/yukikurage/survey-api/internal/config"
	"github.com/yukikurage/survey-api/internal/mailer"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
)

var (
	ErrUserAlreadyExists = errors.New("user with this username or email already exists")
)

// UserService provides business logic for user accounts.
type UserService struct {
	repos    *repository.Repositories
	renderer mailer.Renderer
	notifier MailNotifier
}

// NewUserService creates a new UserService.
func NewUserService(repos *repository.Repositories, renderer mailer.Renderer, notifier MailNotifier) *UserService {
	return &UserService{
		repos:    repos,
		renderer: renderer,
		notifier: notifierOrNoop(notifier),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	PasswordRepeat string
	FirstName      string
	LastName       string
	BirthDate      time.Time
}

// Register creates an inactive user with a verification and queues the
// confirmation email, all in one transaction.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Password != input.PasswordRepeat {
		return nil, ErrPasswordMismatch
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	taken, err := s.repos.Users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if taken {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		BirthDate:    input.BirthDate,
		IsActive:     false,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			// lost a race with a concurrent registration
			if errors.Is(err, repository.ErrConflict) {
				return ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		verification := &models.Verification{UserID: user.ID}
		if err := tx.Verifications.Create(ctx, verification); err != nil {
			return fmt.Errorf("failed to create verification: %w", err)
		}

		msg, err := s.renderer.NewAccount(user.Email, user.Username, verification.ID.String())
		if err != nil {
			return err
		}
		_, err = mailer.Enqueue(ctx, tx.Emails, models.EmailKindRegistration, msg)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Nudge()
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SearchUsersInput holds case-sensitive substring filters. Empty fields match everything.
type SearchUsersInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Page      int
	PageSize  int
}

// SearchUsers lists users matching every non-empty filter.
func (s *UserService) SearchUsers(ctx context.Context, input SearchUsersInput) ([]models.User, int64, error) {
	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListUsers lists every user.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	return s.SearchUsers(ctx, SearchUsersInput{Page: page, PageSize: pageSize})
}

// UpdateProfileInput holds optional profile changes. Nil fields are left untouched.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	BirthDate *time.Time
}

// UpdateProfile applies a partial update to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	changes := map[string]interface{}{}
	if input.Username != nil {
		changes["username"] = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		changes["email"] = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		changes["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		changes["last_name"] = *input.LastName
	}
	if input.BirthDate != nil {
		changes["birth_date"] = *input.BirthDate
	}

	user, err := s.repos.Users.Update(ctx, userID, changes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrUserAlreadyExists
		default:
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}
	return user, nil
}

// DeleteSelf deletes current after re-checking its credentials. It returns
// ErrForbidden if the credentials belong to another account.
func (s *UserService) DeleteSelf(ctx context.Context, current *models.User, login, password string) (*models.User, error) {
	user, err := authenticate(ctx, s.repos.Users, login, password)
	if err != nil {
		return nil, err
	}
	if user.ID != current.ID {
		return nil, fmt.Errorf("%w: credentials belong to another user", ErrForbidden)
	}

	deleted, err := s.repos.Users.Delete(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}

// SeedAdmin inserts the admin fixture unless its username or email is taken.
// It reports whether a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, fixture config.AdminFixture) (*models.User, bool, error) {
	existing, err := s.repos.Users.FindByLogin(ctx, fixture.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to find admin: %w", err)
	}

	taken, err := s.repos.Users.ExistsByUsernameOrEmail(ctx, fixture.Username, fixture.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check admin: %w", err)
	}
	if taken {
		return nil, false, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(fixture.Password)
	if err != nil {
		return nil, false, err
	}

	admin := &models.User{
		Username:     fixture.Username,
		Email:        fixture.Email,
		PasswordHash: hash,
		FirstName:    fixture.FirstName,
		LastName:     fixture.LastName,
		BirthDate:    fixture.BirthDate,
		IsActive:     fixture.IsActive,
		IsStaff:      fixture.IsStaff,
		IsSuperuser:  fixture.IsSuperuser,
	}
	if err := s.repos.Users.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, true, nil
}
