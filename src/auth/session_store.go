package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps opaque bearer tokens in redis under session:<token>.
type SessionStore struct {
	client          *redis.Client
	sessionDuration time.Duration
}

func NewSessionStore(client *redis.Client, sessionDuration time.Duration) *SessionStore {
	return &SessionStore{
		client:          client,
		sessionDuration: sessionDuration,
	}
}

func (s *SessionStore) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *SessionStore) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	token, err := s.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionDuration),
		CreatedAt: now,
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionStore) save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.Token), data, s.sessionDuration).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, token)
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// RefreshSession pushes the expiry of an existing session forward by the session duration.
func (s *SessionStore) RefreshSession(ctx context.Context, session *models.Session) error {
	session.ExpiresAt = time.Now().Add(s.sessionDuration)
	return s.save(ctx, session)
}
