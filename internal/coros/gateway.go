// Package coros issues authenticated calls against the COROS Training Hub
// REST API: the request gateway with single retry on auth failure, plus the
// typed program and schedule endpoints.
package coros

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/coroshub/internal/models"
)

// Session supplies tokens and the regional base URL. *auth.Session satisfies
// it; tests substitute fakes.
type Session interface {
	Token(ctx context.Context) (models.AuthToken, error)
	Refresh(ctx context.Context) (models.AuthToken, error)
	BaseURL() string
}

// Request describes one API call. Exactly one of Body and RawBody may be
// set: RawBody is sent byte-for-byte, bypassing JSON serialization, for
// endpoints whose numeric literals must not be re-encoded.
type Request struct {
	Method  string
	Path    string
	Body    any
	RawBody string
	Params  map[string]string
}

// Gateway performs authenticated HTTP calls and interprets the response
// envelope. On HTTP 401 it refreshes the session and retries exactly once;
// a refresh failure replaces the original error so callers see why
// authentication could not be restored.
type Gateway struct {
	session Session
	httpc   *http.Client
	log     *slog.Logger
}

// NewGateway creates a gateway over the given session.
func NewGateway(session Session, log *slog.Logger) *Gateway {
	return &Gateway{
		session: session,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Call performs the request and returns the envelope's data payload.
func (g *Gateway) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Body != nil && req.RawBody != "" {
		return nil, models.NewValidationError("request may carry either a body or a raw body, not both")
	}

	tok, err := g.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	data, err := g.do(ctx, req, tok)

	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
		g.log.Info("got 401, refreshing token", "path", req.Path)
		tok, rerr := g.session.Refresh(ctx)
		if rerr != nil {
			return nil, rerr
		}
		return g.do(ctx, req, tok)
	}

	return data, err
}

func (g *Gateway) do(ctx context.Context, req Request, tok models.AuthToken) (json.RawMessage, error) {
	u := g.session.BaseURL() + req.Path
	if len(req.Params) > 0 {
		q := url.Values{}
		for k, v := range req.Params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var body io.Reader
	switch {
	case req.RawBody != "":
		body = strings.NewReader(req.RawBody)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &models.NetworkError{Path: req.Path, Err: err}
		}
		body = strings.NewReader(string(data))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, &models.NetworkError{Path: req.Path, Err: err}
	}

	userHeader, err := json.Marshal(struct {
		UserID string `json:"userId"`
	}{tok.UserID})
	if err != nil {
		return nil, &models.NetworkError{Path: req.Path, Err: err}
	}

	// Both auth headers are mandatory for every authenticated call.
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("accesstoken", tok.AccessToken)
	httpReq.Header.Set("yfheader", string(userHeader))

	resp, err := g.httpc.Do(httpReq)
	if err != nil {
		return nil, &models.NetworkError{Path: req.Path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.HTTPError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Path:       req.Path,
			Body:       string(respBody),
		}
	}
	if readErr != nil {
		return nil, &models.NetworkError{Path: req.Path, Err: readErr}
	}

	var env models.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &models.NetworkError{Path: req.Path, Err: err}
	}
	if !env.IsSuccess() {
		return nil, &models.APIError{Path: req.Path, Code: env.Code(), Message: env.Message}
	}

	return env.Data, nil
}

// Get performs an authenticated GET.
func (g *Gateway) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	return g.Call(ctx, Request{Method: http.MethodGet, Path: path, Params: params})
}

// Post performs an authenticated POST with a JSON-serialized body.
func (g *Gateway) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return g.Call(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostRaw performs an authenticated POST sending rawBody byte-for-byte.
func (g *Gateway) PostRaw(ctx context.Context, path, rawBody string) (json.RawMessage, error) {
	return g.Call(ctx, Request{Method: http.MethodPost, Path: path, RawBody: rawBody})
}
