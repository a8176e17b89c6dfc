// Package services contains server-side business logic: UserService
// registers and authenticates users, ProjectService enforces per-owner
// access to projects.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/cryptox"
	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
	"github.com/dmitrijs2005/projectkeeper/internal/server/models"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/users"
)

// TokenIssuer mints bearer tokens for an authenticated identity.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
	Lifetime() time.Duration
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string             `json:"accessToken"`
	ExpiresIn   int64              `json:"expiresIn"`
	User        *models.PublicUser `json:"user"`
}

// UserService provides authentication-related operations:
// - Register: create users with unique username and email
// - Login: verify credentials and mint a token
// - VerifySession: resolve a token subject back to a user
type UserService struct {
	repo   users.Repository
	hasher cryptox.PasswordHasher
	tokens TokenIssuer
	logger logging.Logger

	// dummyHash is compared against when the username is unknown so both
	// login failure paths cost one hash verification.
	dummyHash string
}

// fallbackDummyHash is a well-formed bcrypt hash (cost 10) used when the
// configured hasher cannot produce one at startup.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// NewUserService constructs a UserService.
func NewUserService(repo users.Repository, hasher cryptox.PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	s := &UserService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.With("module", "user_service"),
		dummyHash: fallbackDummyHash,
	}

	if dummy, err := hasher.Hash(uuid.NewString()); err != nil {
		s.logger.Warn(context.Background(), "dummy hash failed, using fallback", "error", err)
	} else {
		s.dummyHash = dummy
	}
	return s
}

// Register creates a user. Username uniqueness is checked before email
// uniqueness, so a request colliding on both reports the username.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.PublicUser, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	if err := s.ensureAbsent(ctx, s.repo.GetUserByLogin, username, common.ErrDuplicateUsername); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.repo.GetUserByEmail, email, common.ErrDuplicateEmail); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created.Public(), nil
}

func (s *UserService) ensureAbsent(ctx context.Context, find func(context.Context, string) (*models.User, error), key string, dup error) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return dup
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("error searching user: %w", err)
	}
}

// Login verifies the password and returns a fresh token. Unknown usernames
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := validateLogin(username, password); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Username: user.UserName})
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.Lifetime() / time.Second),
		User:        &models.PublicUser{ID: user.ID, UserName: user.UserName, Email: user.Email},
	}, nil
}

// VerifySession returns the user a verified token refers to. A user removed
// after the token was issued yields common.ErrUserNotFound.
func (s *UserService) VerifySession(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}
