package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"www.github.com/Wanderer0074348/Yahmi/src/config"
)

var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Handler struct {
	service     *Service
	oauthConfig *oauth2.Config
	stateStore  *StateStore
	config      *config.AuthConfig
	logger      *zap.Logger
}

// NewHandler wires the auth endpoints. stateStore may be nil when Google login is disabled.
func NewHandler(service *Service, stateStore *StateStore, cfg *config.AuthConfig, logger *zap.Logger) *Handler {
	h := &Handler{
		service:    service,
		stateStore: stateStore,
		config:     cfg,
		logger:     logger,
	}

	if cfg.GoogleEnabled() && stateStore != nil {
		h.oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return h
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), &req)
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	case err != nil:
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	resp, err := h.service.SignIn(c.Request.Context(), &req)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error("signin failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SignOut(c *gin.Context) {
	if session, ok := CurrentSession(c); ok {
		if err := h.service.SignOut(c.Request.Context(), session.Token); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": Summarize(user)})
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.oauthConfig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google login is not configured"})
		return
	}

	state, err := h.stateStore.Issue(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to issue oauth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.oauthConfig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google login is not configured"})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing state or code parameter"})
		return
	}

	valid, err := h.stateStore.Consume(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate state"})
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired state"})
		return
	}

	token, err := h.oauthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange code for token"})
		return
	}

	googleUser, err := fetchGoogleUserInfo(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.logger.Error("failed to fetch google user info", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}

	if !googleUser.VerifiedEmail {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		return
	}

	_, session, err := h.service.LoginWithGoogle(c.Request.Context(), googleUser)
	if err != nil {
		h.logger.Error("google login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.setSessionCookie(c, session.Token, int(h.config.SessionDuration.Seconds()))
	c.Redirect(http.StatusFound, h.config.FrontendURL+"/auth/callback")
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	switch h.config.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)

	cookieDomain := h.config.CookieDomain
	if cookieDomain == "localhost" {
		cookieDomain = ""
	}

	c.SetCookie(SessionCookieName, value, maxAge, "/", cookieDomain, h.config.CookieSecure, true)
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	var googleUser GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &googleUser, nil
}
