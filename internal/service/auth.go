package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/models"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/repository"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/storage"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/validation"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAvatarMaxBytes caps avatar uploads when no limit is configured.
const DefaultAvatarMaxBytes = 5 << 20

// timingPassword is hashed once at startup and compared against on logins for
// unknown emails, so both failure paths cost one bcrypt comparison.
const timingPassword = "timing-equalizer-0!"

var allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// SignupRequest holds the fields accepted at registration.
type SignupRequest struct {
	Username string
	Email    string
	Password string
}

// ProfileUpdate holds the self-service profile fields. Empty fields are left
// unchanged.
type ProfileUpdate struct {
	Email    string
	Password string
}

// Session is an authenticated user together with a freshly issued token.
type Session struct {
	User      *models.User
	Token     string
	ExpiresIn time.Duration
}

// AuthService defines account and session operations.
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
	UpdateRole(ctx context.Context, userID, role string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID string, data []byte) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	tokens         TokenService
	hasher         PasswordHasher
	avatars        storage.ObjectStore
	avatarMaxBytes int64
	timingHash     string
}

// NewAuthService creates a new AuthService instance. avatars may be nil, in
// which case avatar uploads fail with ErrStorageDisabled.
func NewAuthService(userRepo repository.UserRepository, tokens TokenService, hasher PasswordHasher, avatars storage.ObjectStore, avatarMaxBytes int64) AuthService {
	if avatarMaxBytes <= 0 {
		avatarMaxBytes = DefaultAvatarMaxBytes
	}
	timingHash, _ := hasher.Hash(timingPassword)

	return &authService{
		userRepo:       userRepo,
		tokens:         tokens,
		hasher:         hasher,
		avatars:        avatars,
		avatarMaxBytes: avatarMaxBytes,
		timingHash:     timingHash,
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if !validation.IsValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsStrongPassword(req.Password) {
		return nil, ErrWeakPassword
	}

	// Fast path for a friendly message; the unique indexes are authoritative.
	if err := s.ensureAvailable(ctx, req.Email, req.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translateRepoError(err)
	}

	return s.newSession(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Verify(password, s.timingHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	if update.Email == "" && update.Password == "" {
		return nil, ErrNothingToUpdate
	}

	var changes models.UserUpdate

	if update.Email != "" {
		if !validation.IsValidEmail(update.Email) {
			return nil, ErrInvalidEmail
		}
		existing, err := s.userRepo.FindByEmail(ctx, update.Email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		changes.Email = &update.Email
	}

	if update.Password != "" {
		if !validation.IsStrongPassword(update.Password) {
			return nil, ErrWeakPassword
		}
		hash, err := s.hasher.Hash(update.Password)
		if err != nil {
			if errors.Is(err, ErrPasswordTooLong) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}

	if err := s.userRepo.UpdateByID(ctx, userID, changes); err != nil {
		return nil, translateRepoError(err)
	}
	return s.GetUser(ctx, userID)
}

func (s *authService) UpdateRole(ctx context.Context, userID, role string) (*models.User, error) {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}

	if err := s.userRepo.UpdateByID(ctx, userID, models.UserUpdate{Role: &parsed}); err != nil {
		return nil, translateRepoError(err)
	}
	return s.GetUser(ctx, userID)
}

func (s *authService) UpdateAvatar(ctx context.Context, userID string, data []byte) (*models.User, error) {
	if s.avatars == nil {
		return nil, ErrStorageDisabled
	}
	if int64(len(data)) > s.avatarMaxBytes {
		return nil, ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if len(data) == 0 || !mimetype.EqualsAny(mtype.String(), allowedAvatarTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), mtype.Extension())
	url, err := s.avatars.Put(ctx, key, mtype.String(), data)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateByID(ctx, userID, models.UserUpdate{ProfilePic: &url}); err != nil {
		return nil, translateRepoError(err)
	}
	return s.GetUser(ctx, userID)
}

func (s *authService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func (s *authService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

func translateRepoError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	}
	return err
}
