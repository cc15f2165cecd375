package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"go-auth-api/internal/model"
	"go-auth-api/internal/password"
	"go-auth-api/internal/token"
	"go-auth-api/pkg/apierror"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	maxPasswordLen = 72
)

// UserStore is the persistence surface the auth flow needs. The
// Postgres repository implements it in production and the in-memory
// repository implements it in tests.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) error
}

type AuthService struct {
	users  UserStore
	hasher *password.Hasher
	tokens *token.Manager
}

func NewAuthService(users UserStore, hasher *password.Hasher, tokens *token.Manager) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a new credential record. The username must be free;
// a concurrent insert of the same name loses at the store's uniqueness
// constraint and surfaces here as the same duplicate error.
func (s *AuthService) Register(ctx context.Context, username string, plaintext string) (model.PublicUser, error) {
	username = strings.TrimSpace(username)

	if err := validateUsername(username); err != nil {
		return model.PublicUser{}, err
	}
	if err := validatePassword(plaintext); err != nil {
		return model.PublicUser{}, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("check duplicate username: %w", err)
	}
	if exists {
		slog.Warn("duplicate registration attempt", "username", username)
		return model.PublicUser{}, duplicateUsernameError(username)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.PublicUser{}, duplicateUsernameError(username)
		}
		return model.PublicUser{}, fmt.Errorf("persist user: %w", err)
	}

	slog.Info("user registered", "username", username)
	return user.Public(), nil
}

// Login verifies credentials and mints a token pair. Unknown usernames
// and wrong passwords produce the identical error so responses do not
// reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, username string, plaintext string) (model.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			slog.Warn("login failed", "username", username)
			return model.TokenPair{}, invalidCredentialsError()
		}
		return model.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		slog.Warn("login failed", "username", username)
		return model.TokenPair{}, invalidCredentialsError()
	}

	slog.Info("login succeeded", "username", username)
	return s.IssueTokenPair(user.Username)
}

// Refresh exchanges a valid refresh token for a brand-new pair. The old
// refresh token is not invalidated; tokens are stateless and expire
// only by timestamp.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	subject, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	slog.Info("token refreshed", "username", subject)
	return s.IssueTokenPair(subject)
}

// Whoami resolves a bearer access token to the stored user record. A
// valid token whose subject no longer exists yields a not-found error.
func (s *AuthService) Whoami(ctx context.Context, accessToken string) (model.PublicUser, error) {
	subject, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return model.PublicUser{}, err
	}

	return s.GetUserByUsername(ctx, subject)
}

func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (model.PublicUser, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.PublicUser{}, apierror.New("NOT_FOUND", "user not found", username, http.StatusNotFound)
		}
		return model.PublicUser{}, fmt.Errorf("lookup user: %w", err)
	}

	return user.Public(), nil
}

// IssueTokenPair mints a fresh access+refresh pair for the subject.
func (s *AuthService) IssueTokenPair(username string) (model.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(username)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(username)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func validateUsername(username string) error {
	length := utf8.RuneCountInString(username)
	if length < minUsernameLen {
		return apierror.Validation("username", "username must be at least 3 characters")
	}
	if length > maxUsernameLen {
		return apierror.Validation("username", "username cannot exceed 50 characters")
	}
	return nil
}

func validatePassword(plaintext string) error {
	length := utf8.RuneCountInString(plaintext)
	if length < minPasswordLen {
		return apierror.Validation("password", "password must be at least 8 characters")
	}
	if length > maxPasswordLen {
		return apierror.Validation("password", "password cannot exceed 72 characters")
	}
	return nil
}

func duplicateUsernameError(username string) error {
	return apierror.New("ALREADY_REGISTERED", "username is already registered", username, http.StatusBadRequest)
}

func invalidCredentialsError() error {
	return apierror.New("UNAUTHORIZED", "incorrect username or password", "", http.StatusUnauthorized)
}
