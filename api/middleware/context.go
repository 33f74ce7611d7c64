package middleware

import (
	"context"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// Principal is the authenticated caller as restored from the session store.
type Principal struct {
	UserID             int64
	StoreID            int64
	Name               string
	Role               enums.UserRole
	Permission         int
	AccessID           string
	MustChangePassword bool
}

// WithPrincipal injects the caller into the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok && p.UserID > 0
}
