package introspect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vaccine-planner/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier por introspección remota.
// No se integra automáticamente; lo instancian main/router si hay config.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.Introspect(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("token introspection failed: %w", err)
	}
	return claims, nil
}
