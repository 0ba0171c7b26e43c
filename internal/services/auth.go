package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgCredentialsRequired = "Username and password are required."
	msgInvalidCredentials  = "Invalid credentials."
	msgAdminExists         = "Admin user already exists."
)

type AuthService struct {
	Admins repository.AdminRepository
	Hasher PasswordHasher
	Log    *zap.Logger

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(admins repository.AdminRepository, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{Admins: admins, Hasher: NewPasswordHasher(), Log: log, now: time.Now}
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail with the same error after the same amount of hashing work.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (models.Admin, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.Admin{}, ErrBadRequest(msgCredentialsRequired)
	}

	admin, err := s.Admins.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.Hasher.Verify(password, s.dummy())
		return models.Admin{}, ErrUnauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return models.Admin{}, WrapError(err, "find admin")
	}
	if !s.Hasher.Verify(password, admin.PasswordHash) {
		return models.Admin{}, ErrUnauthorized(msgInvalidCredentials)
	}

	at := s.now().UTC()
	if err := s.Admins.TouchLastLogin(ctx, admin.ID, at); err != nil {
		return models.Admin{}, WrapError(err, "record login")
	}
	admin.LastLoginAt = &at
	s.Log.Info("admin login", zap.String("username", admin.Username))
	return admin, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.Hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

type SeedResult struct {
	Created  bool   `json:"-"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// Seed creates the superadmin account once. An existing account with the same
// username is reported, not overwritten.
func (s *AuthService) Seed(ctx context.Context, username, password string) (SeedResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return SeedResult{}, ServiceError{Status: http.StatusInternalServerError, Message: "ADMIN_SEED_PASSWORD is not configured"}
	}

	_, err := s.Admins.FindByUsername(ctx, username)
	if err == nil {
		return SeedResult{Message: msgAdminExists}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return SeedResult{}, WrapError(err, "find admin")
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return SeedResult{}, WrapError(err, "hash password")
	}
	now := s.now().UTC()
	err = s.Admins.Create(ctx, models.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return SeedResult{Message: msgAdminExists}, nil
	}
	if err != nil {
		return SeedResult{}, WrapError(err, "create admin")
	}
	s.Log.Info("admin seeded", zap.String("username", username))
	return SeedResult{Created: true, Message: `Admin user "` + username + `" created successfully.`, Username: username}, nil
}
