package services

import "context"

type contextKey string

const (
	userIDKey contextKey = "user_id"
	runIDKey  contextKey = "run_id"
)

// WithUserID annotates context with the session owner's identity.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext extracts the session owner's identity if present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	switch v := ctx.Value(userIDKey).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// WithRunID annotates context with the packing run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the packing run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
