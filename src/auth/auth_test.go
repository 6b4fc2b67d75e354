package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/store"
)

type testEnv struct {
	service  *Service
	handler  *Handler
	sessions *SessionStore
	states   *StateStore
	store    *store.Store
	mr       *miniredis.Miniredis
}

func setupAuth(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db, err := store.Open(filepath.Join(t.TempDir(), "auth.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := NewSessionStore(client, 7*24*time.Hour)
	states := NewStateStore(client, 10*time.Minute)
	service := NewService(db, sessions, zap.NewNop())
	cfg := &config.AuthConfig{SessionDuration: 7 * 24 * time.Hour, FrontendURL: "http://localhost:5173"}

	return &testEnv{
		service:  service,
		handler:  NewHandler(service, states, cfg, zap.NewNop()),
		sessions: sessions,
		states:   states,
		store:    db,
		mr:       mr,
	}
}

func postJSON(handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler(c)
	return w
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("", "correct horse"))
}

func TestSessionStore_Lifecycle(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	session, err := env.sessions.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(session.Token), 40)
	assert.True(t, env.mr.Exists("session:"+session.Token))

	got, err := env.sessions.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	require.NoError(t, env.sessions.DeleteSession(ctx, session.Token))
	_, err = env.sessions.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expires(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	session, err := env.sessions.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	env.mr.FastForward(8 * 24 * time.Hour)

	_, err = env.sessions.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStateStore_ConsumeOnce(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	state, err := env.states.Issue(ctx)
	require.NoError(t, err)

	ok, err := env.states.Consume(ctx, state)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.states.Consume(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_SignUpAndSignIn(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()
	company := "Acme Steel"

	req := &SignUpRequest{Email: "Ops@Acme.io", Password: "password123"}
	req.CompanyName = &company

	resp, err := env.service.SignUp(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", resp.User.Email)
	assert.Equal(t, "Acme Steel", resp.User.CompanyName)
	assert.NotEmpty(t, resp.Token)

	user, _, err := env.service.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	signIn, err := env.service.SignIn(ctx, &SignInRequest{Email: "ops@acme.io", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token, signIn.Token)

	_, err = env.service.SignIn(ctx, &SignInRequest{Email: "ops@acme.io", Password: "nope-nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.service.SignIn(ctx, &SignInRequest{Email: "ghost@acme.io", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SignUpRejectsDuplicateAndShortPassword(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.service.SignUp(ctx, &SignUpRequest{Email: "a@b.io", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = env.service.SignUp(ctx, &SignUpRequest{Email: "a@b.io", Password: "password123"})
	require.NoError(t, err)

	_, err = env.service.SignUp(ctx, &SignUpRequest{Email: "A@B.io", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_SignOutInvalidatesToken(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	resp, err := env.service.SignUp(ctx, &SignUpRequest{Email: "a@b.io", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.service.SignOut(ctx, resp.Token))

	_, _, err = env.service.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_LoginWithGoogleCreatesOnce(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()
	info := &GoogleUserInfo{Email: "Jo@Acme.io", Name: "Jo", VerifiedEmail: true}

	first, _, err := env.service.LoginWithGoogle(ctx, info)
	require.NoError(t, err)
	second, _, err := env.service.LoginWithGoogle(ctx, info)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jo", first.DisplayName)

	// Google accounts have no password and cannot use password sign in.
	_, err = env.service.SignIn(ctx, &SignInRequest{Email: "jo@acme.io", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHandler_SignUp(t *testing.T) {
	env := setupAuth(t)

	w := postJSON(env.handler.SignUp, gin.H{"email": "a@b.io", "password": "password123", "industry": "Steel"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Steel", resp.User.Industry)
	assert.NotEmpty(t, resp.Token)
}

func TestHandler_SignUpErrors(t *testing.T) {
	env := setupAuth(t)

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"missing password", gin.H{"email": "a@b.io"}, "Email and password are required"},
		{"short password", gin.H{"email": "a@b.io", "password": "1234567"}, "Password must be at least 8 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(env.handler.SignUp, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}

	require.Equal(t, http.StatusOK, postJSON(env.handler.SignUp, gin.H{"email": "a@b.io", "password": "password123"}).Code)
	w := postJSON(env.handler.SignUp, gin.H{"email": "a@b.io", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestHandler_SignInFailureIsUniform(t *testing.T) {
	env := setupAuth(t)
	require.Equal(t, http.StatusOK, postJSON(env.handler.SignUp, gin.H{"email": "a@b.io", "password": "password123"}).Code)

	for _, body := range []gin.H{
		{"email": "a@b.io", "password": "wrong-password"},
		{"email": "nobody@b.io", "password": "password123"},
		{"email": "a@b.io"},
	} {
		w := postJSON(env.handler.SignIn, body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	}
}

func TestHandler_MeRequiresUser(t *testing.T) {
	env := setupAuth(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	env.handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GoogleDisabled(t *testing.T) {
	env := setupAuth(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	env.handler.GoogleLogin(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GoogleLoginIssuesState(t *testing.T) {
	env := setupAuth(t)
	cfg := &config.AuthConfig{GoogleClientID: "id", GoogleClientSecret: "secret", GoogleRedirectURL: "http://localhost/cb"}
	handler := NewHandler(env.service, env.states, cfg, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler.GoogleLogin(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accounts.google.com")
	assert.Len(t, env.mr.Keys(), 1)
}

func TestHandler_GoogleCallbackRejectsUnknownState(t *testing.T) {
	env := setupAuth(t)
	cfg := &config.AuthConfig{GoogleClientID: "id", GoogleClientSecret: "secret"}
	handler := NewHandler(env.service, env.states, cfg, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?state=forged&code=abc", nil)
	handler.GoogleCallback(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenFromRequest(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", TokenFromRequest(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(c))
}
