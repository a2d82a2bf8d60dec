package features

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vaccine-planner/internal/platform/httpclient"
)

var (
	ErrFeaturesNotConfigured = errors.New("features client not configured")
	ErrFeaturesUnauthorized  = errors.New("features unauthorized")
	ErrFeaturesUpstream      = errors.New("features upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// CapabilitiesResponse es deliberadamente simple.
type CapabilitiesResponse struct {
	// Ejemplo: {"profiles:multi": true}
	Capabilities map[string]bool `json:"capabilities"`
}

// GetCapabilities trae el mapa de capabilities del plan de un usuario.
func (c *Client) GetCapabilities(ctx context.Context, userID string) (CapabilitiesResponse, error) {
	if !c.IsConfigured() {
		return CapabilitiesResponse{}, ErrFeaturesNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CapabilitiesResponse{}, errors.New("userID required")
	}

	path := "/v1/capabilities?user_id=" + url.QueryEscape(userID)
	headers := map[string]string{
		c.apiKeyHeader: c.apiKey,
	}

	var out CapabilitiesResponse
	err := c.http.DoJSON(ctx, http.MethodGet, path, headers, nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return CapabilitiesResponse{}, ErrFeaturesUnauthorized
			}
			return CapabilitiesResponse{}, fmt.Errorf("%w: status=%d", ErrFeaturesUpstream, httpErr.StatusCode)
		}
		return CapabilitiesResponse{}, fmt.Errorf("%w: %v", ErrFeaturesUpstream, err)
	}

	if out.Capabilities == nil {
		out.Capabilities = map[string]bool{}
	}
	return out, nil
}
