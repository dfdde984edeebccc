// Package auth owns credential resolution, login against the COROS account
// endpoint, the in-memory token cache, and the durable token store.
package auth

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/claude/coroshub/internal/config"
	"github.com/claude/coroshub/internal/models"
)

const loginPath = "/account/login"

// Credentials identify a COROS account. Never persisted.
type Credentials struct {
	Email    string
	Password string
	Region   models.Region
}

// Session owns the process-lifetime token cache and the durable store.
// Login and refresh are serialized behind the mutex so concurrent callers
// await one in-flight login instead of issuing duplicates.
type Session struct {
	mu        sync.Mutex
	cached    *models.AuthToken
	region    models.Region
	store     *Store
	cfg       *config.Config
	httpc     *http.Client
	log       *slog.Logger
	regionURL func(models.Region) string
}

// NewSession creates a session. Configured credentials (file or env, already
// folded into cfg) are used when no explicit credentials are supplied.
func NewSession(cfg *config.Config, store *Store, log *slog.Logger) *Session {
	return &Session{
		region:    config.ParseRegion(cfg.Auth.Region, log),
		store:     store,
		cfg:       cfg,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		log:       log,
		regionURL: config.BaseURL,
	}
}

// BaseURL returns the regional API base URL for this session.
func (s *Session) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionURL(s.region)
}

// Token returns a usable auth token: cached, stored, or freshly logged in
// from configured credentials, in that order.
func (s *Session) Token(ctx context.Context) (models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLocked(ctx)
}

func (s *Session) tokenLocked(ctx context.Context) (models.AuthToken, error) {
	if s.cached != nil {
		return *s.cached, nil
	}

	if tok, ok := s.store.Read(); ok {
		s.cached = &tok
		return tok, nil
	}

	creds, ok := s.configuredCredentials()
	if !ok {
		return models.AuthToken{}, models.NotAuthenticatedError{}
	}
	return s.loginLocked(ctx, creds)
}

// Login authenticates with explicit credentials, or the configured ones when
// creds is nil. On success the token is cached and persisted best-effort.
func (s *Session) Login(ctx context.Context, creds *Credentials) (models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds == nil {
		c, ok := s.configuredCredentials()
		if !ok {
			return models.AuthToken{}, models.NotAuthenticatedError{}
		}
		creds = &c
	}
	return s.loginLocked(ctx, *creds)
}

// Refresh clears the cache and store, then re-derives a token from
// configuration. It re-authenticates; it never replays the previous login.
func (s *Session) Refresh(ctx context.Context) (models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	return s.tokenLocked(ctx)
}

// Clear drops the in-memory token and best-effort clears the durable store.
// It never fails the caller.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.cached = nil
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to clear stored token", "error", err)
	}
}

func (s *Session) configuredCredentials() (Credentials, bool) {
	if !s.cfg.HasCredentials() {
		return Credentials{}, false
	}
	return Credentials{
		Email:    s.cfg.Auth.Email,
		Password: s.cfg.Auth.Password,
		Region:   config.ParseRegion(s.cfg.Auth.Region, s.log),
	}, true
}

// passwordDigest computes the MD5 hex digest the COROS login endpoint
// expects. Compatibility requirement of the wrapped API, not a security
// measure.
func passwordDigest(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Session) loginLocked(ctx context.Context, creds Credentials) (models.AuthToken, error) {
	body, err := json.Marshal(map[string]any{
		"account":     creds.Email,
		"accountType": config.AccountType,
		"pwd":         passwordDigest(creds.Password),
	})
	if err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: err}
	}

	url := s.regionURL(creds.Region) + loginPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.AuthToken{}, &models.HTTPError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Path:       loginPath,
			Body:       string(respBody),
		}
	}

	var env models.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if !env.IsSuccess() {
		return models.AuthToken{}, &models.APIError{Path: loginPath, Code: env.Code(), Message: env.Message}
	}

	var data models.LoginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return models.AuthToken{}, &models.NetworkError{Path: loginPath, Err: fmt.Errorf("parsing login data: %w", err)}
	}

	tok := models.AuthToken{AccessToken: data.AccessToken, UserID: data.UserID}
	if !tok.Valid() {
		return models.AuthToken{}, &models.APIError{Path: loginPath, Code: env.Code(), Message: "login response missing accessToken or userId"}
	}

	s.cached = &tok
	s.region = creds.Region

	// Persistence failure is non-fatal; the session stays usable in memory.
	if err := s.store.Write(tok); err != nil {
		s.log.Warn("failed to persist token", "error", err)
	}

	return tok, nil
}
