package auth

import (
	"context"

	"github.com/mcclellann/emiLedger/pkg/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// FromContext returns the authenticated principal, or nil when the request
// carried no valid token.
func FromContext(ctx context.Context) *models.Principal {
	val, ok := ctx.Value(principalContextKey).(models.Principal)
	if !ok {
		return nil
	}
	return &val
}
