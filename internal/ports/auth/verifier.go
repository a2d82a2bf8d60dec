package auth

import "context"

// AuthVerifier valida un Bearer token y devuelve la identidad que
// representa. La implementación productiva es el adapter de
// introspección (adapters/auth/introspect); en modo dev el middleware
// arma los claims desde headers de debug y no pasa por acá.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
