package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore holds OAuth state values between the login redirect and the callback.
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	return &StateStore{
		client: client,
		ttl:    ttl,
	}
}

func stateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

// Issue creates and stores a fresh state value.
func (s *StateStore) Issue(ctx context.Context) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	data, err := json.Marshal(OAuthState{State: state, ExpiresAt: time.Now().Add(s.ttl)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.client.Set(ctx, stateKey(state), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	return state, nil
}

// Consume reports whether state was issued and is unexpired. A state can be consumed once.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	data, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get state: %w", err)
	}

	var oauthState OAuthState
	if err := json.Unmarshal([]byte(data), &oauthState); err != nil {
		return false, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return time.Now().Before(oauthState.ExpiresAt), nil
}
