// Package identity resolves opaque user IDs to display names. Resolution
// is an external capability: failures degrade to an anonymized fallback,
// never to a request error.
package identity

import (
	"context"
	"fmt"

	"github.com/abenezer101/farmrush/internal/store"
)

// Resolver maps a user ID to a display name within a game instance
type Resolver interface {
	Resolve(ctx context.Context, instance, userID string) (string, error)
}

// Registry is a store-backed Resolver. Names are registered when a client
// first announces itself at game-init.
type Registry struct {
	store store.Store
}

// NewRegistry creates a Registry over s
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

func usersKey(instance string) string {
	return "users:" + instance
}

// Register records the display name for a user
func (r *Registry) Register(ctx context.Context, instance, userID, name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	return r.store.HSet(ctx, usersKey(instance), map[string]string{userID: name})
}

// Resolve returns the registered display name for userID
func (r *Registry) Resolve(ctx context.Context, instance, userID string) (string, error) {
	name, ok, err := r.store.HGet(ctx, usersKey(instance), userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no name registered for %s", userID)
	}
	return name, nil
}

// Fallback returns the anonymized placeholder used when resolution fails
func Fallback(userID string) string {
	id := userID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Player-" + id
}

// ResolveOrFallback resolves userID, degrading to Fallback on any miss or error
func ResolveOrFallback(ctx context.Context, r Resolver, instance, userID string) string {
	name, err := r.Resolve(ctx, instance, userID)
	if err != nil || name == "" {
		return Fallback(userID)
	}
	return name
}
