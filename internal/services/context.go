package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	featureKey   contextKey = "feature"
	requestIDKey contextKey = "request_id"
)

// Feature names used in context and logs.
const (
	FeatureCaptions  = "captions"
	FeatureNarration = "narration"
	FeatureAvatar    = "avatar"
	FeatureDocument  = "document"
)

// WithFeature annotates context with the accessibility feature being served.
func WithFeature(ctx context.Context, feature string) context.Context {
	if feature == "" {
		return ctx
	}
	return context.WithValue(ctx, featureKey, feature)
}

// FeatureFromContext returns the feature name if present.
func FeatureFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(featureKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// EnsureRequestID returns ctx unchanged when it already carries a correlation
// identifier, otherwise a child context stamped with a fresh UUID.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}
