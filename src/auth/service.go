package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/store"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
)

// Service owns the account lifecycle: sign up, sign in, sessions and Google login.
type Service struct {
	users    models.UserRepository
	sessions *SessionStore
	logger   *zap.Logger
}

func NewService(users models.UserRepository, sessions *SessionStore, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if req.ProfileUpdate != (models.ProfileUpdate{}) {
		updated, err := s.users.UpdateProfile(ctx, user.ID, &req.ProfileUpdate)
		if err != nil {
			return nil, err
		}
		user = updated
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to its user and session and slides the session expiry.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sessions.DeleteSession(ctx, token)
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	if err := s.sessions.RefreshSession(ctx, session); err != nil {
		s.logger.Warn("failed to refresh session", zap.String("user_id", user.ID), zap.Error(err))
	}

	return user, session, nil
}

// LoginWithGoogle finds the account for a verified Google identity, creating it on first login.
func (s *Service) LoginWithGoogle(ctx context.Context, info *GoogleUserInfo) (*models.User, *models.Session, error) {
	email := strings.ToLower(info.Email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		user = &models.User{Email: email, DisplayName: info.Name}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("user created from google login", zap.String("user_id", user.ID))
	} else if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: Summarize(user), Token: session.Token}, nil
}
