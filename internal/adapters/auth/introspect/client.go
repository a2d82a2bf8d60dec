package introspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vaccine-planner/internal/platform/httpclient"
	"vaccine-planner/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("introspection client not configured")
	ErrUnauthorized  = errors.New("introspection unauthorized")
	ErrUpstream      = errors.New("introspection upstream error")
)

// Config del cliente de introspección de tokens.
// BaseURL y APIKey normalmente vienen de env vars en quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header donde va la API key. Default "X-Api-Key".
	APIKeyHeader string

	// Opcional: path del endpoint de introspección.
	// Default "/v1/tokens/introspect".
	Path string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
	path         string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "/v1/tokens/introspect"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
		path:         path,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// Introspect consulta al identity provider por un token y devuelve los
// claims. Un token inactivo o desconocido es ErrUnauthorized; los
// problemas de red o del upstream son ErrUpstream.
func (c *Client) Introspect(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{
		c.apiKeyHeader: c.apiKey,
	}
	in := map[string]string{"token": token}

	var out struct {
		Active bool   `json:"active"`
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, c.path, headers, in, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if !out.Active {
		return auth.Claims{}, ErrUnauthorized
	}
	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
	}, nil
}
