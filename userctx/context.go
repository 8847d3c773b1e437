package userctx

import (
	"context"

	"github.com/mhollis/practicum-tracker/models"
)

// Principal is the resolved acting identity for a request: a trainee, a
// supervisor or a program admin. The engine never reads ambient state; every
// service call receives the principal explicitly.
type Principal struct {
	ID    int64
	Email string
	Role  models.Role
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal adds the acting principal to the request context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom retrieves the acting principal from the request context
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
