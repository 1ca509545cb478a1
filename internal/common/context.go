package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyOwnerID contextKey = "owner_id"
)

// WithOwnerID adds the owning account ID to the context
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ContextKeyOwnerID, ownerID)
}

// OwnerIDFromContext extracts the owning account ID from context
func OwnerIDFromContext(ctx context.Context) string {
	if ownerID, ok := ctx.Value(ContextKeyOwnerID).(string); ok {
		return ownerID
	}
	return ""
}
