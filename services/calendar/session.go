package calendar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"ptocal/models"

	"go.uber.org/zap"
)

const defaultTokenEndpoint = "https://oauth2.googleapis.com/token"

// SessionStore optionally persists the latest credential snapshot so a
// restarted process can resume without an immediate refresh exchange.
// Store failures are logged and never fail the exchange itself.
type SessionStore interface {
	SaveSession(ctx context.Context, session models.Session) error
	LoadSession(ctx context.Context) (*models.Session, error)
}

// SessionManager owns the credential for the remote calendar service. The
// current session is swapped wholesale on every refresh so concurrent readers
// never observe a half-updated value.
type SessionManager struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	TokenEndpoint string
	HTTPClient    *http.Client
	Store         SessionStore
	Logger        *zap.Logger

	session atomic.Value // models.Session
}

// NewSessionManager builds a session manager for the configured credentials.
func NewSessionManager(clientID, clientSecret, refreshToken string, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RefreshToken:  refreshToken,
		TokenEndpoint: defaultTokenEndpoint,
		HTTPClient:    http.DefaultClient,
		Logger:        logger,
	}
}

// AccessToken returns the current access credential, or "" when
// unauthenticated.
func (m *SessionManager) AccessToken() string {
	if session, ok := m.session.Load().(models.Session); ok {
		return session.AccessToken
	}
	return ""
}

// Session returns the current credential snapshot.
func (m *SessionManager) Session() models.Session {
	if session, ok := m.session.Load().(models.Session); ok {
		return session
	}
	return models.Session{}
}

// Restore seeds the session from the store, if one is configured and holds a
// snapshot. Called once at startup.
func (m *SessionManager) Restore(ctx context.Context) {
	if m.Store == nil {
		return
	}
	session, err := m.Store.LoadSession(ctx)
	if err != nil {
		m.Logger.Sugar().Warnf("could not restore cached session: %v", err)
		return
	}
	if session != nil && session.AccessToken != "" {
		m.session.Store(*session)
		m.Logger.Sugar().Debug("restored cached session")
	}
}

// LoginWithRefreshToken exchanges the configured refresh credential for a
// fresh access credential and swaps in the new session.
func (m *SessionManager) LoginWithRefreshToken(ctx context.Context) error {
	if m.RefreshToken == "" {
		return &AuthError{Message: "refresh token not configured"}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {m.ClientID},
		"client_secret": {m.ClientSecret},
		"refresh_token": {m.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Message: "building token request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return &AuthError{Message: "token exchange failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Message: "reading token response: " + err.Error()}
	}
	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return &AuthError{Message: "decoding token response: " + err.Error()}
	}
	if token.AccessToken == "" {
		return &AuthError{Message: "unable to get access token using refresh token"}
	}

	session := models.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: m.RefreshToken,
		Scope:        token.Scope,
		TokenType:    token.TokenType,
		ExpiresIn:    token.ExpiresIn,
	}
	m.session.Store(session)
	m.Logger.Sugar().Info("logged in with refresh token")

	if m.Store != nil {
		if err := m.Store.SaveSession(ctx, session); err != nil {
			m.Logger.Sugar().Warnf("could not cache session: %v", err)
		}
	}
	return nil
}
