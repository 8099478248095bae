package httpapi

import (
	"context"

	"github.com/datametrics/matchdesk/internal/domain/staff"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p staff.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (staff.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(staff.Principal)
	return p, ok
}
