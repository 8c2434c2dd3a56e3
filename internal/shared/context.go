package shared

import (
	"context"
	"fmt"
	"slices"
)

// Capabilities recognised by the backend. The upstream gateway resolves the
// session and forwards these; the core only checks membership.
const (
	CapCatalogRead   = "catalog:read"
	CapCatalogWrite  = "catalog:write"
	CapCatalogImport = "catalog:import"
	CapOrdersRead    = "orders:read"
	CapOrdersWrite   = "orders:write"
	CapUsersManage   = "users:manage"
)

// Identity is the hub-scoped authenticated caller. It is resolved by the
// edge (gateway headers in this deployment) and injected into the request
// context by the app middleware; domain services never look it up globally.
type Identity struct {
	UserID       int64
	HubID        int64
	Capabilities []string
}

// Can reports whether the identity carries the given capability.
func (id Identity) Can(capability string) bool {
	return slices.Contains(id.Capabilities, capability)
}

// RequireCapability returns ErrUnauthorized when the identity lacks the
// capability.
func (id Identity) RequireCapability(capability string) error {
	if !id.Can(capability) {
		return fmt.Errorf("capability %s: %w", capability, ErrUnauthorized)
	}
	return nil
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
