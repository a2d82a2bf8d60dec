package capabilities

import "context"

// Resolver responde si un usuario tiene habilitada una capability
// según su plan (p.ej. "profiles:multi"). La implementación real vive
// en adapters; acá solo el contrato.
type Resolver interface {
	Has(ctx context.Context, userID, capability string) (bool, error)
}
