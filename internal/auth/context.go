package auth

import "context"

type ctxKey string

const (
	principalKey ctxKey = "principal"
	roleKey      ctxKey = "role"
)

// WithCaller stores the attested caller identity in the context.
func WithCaller(ctx context.Context, principal, role string) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// PrincipalFrom returns the caller principal, if authenticated.
func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey).(string)
	return p, ok && p != ""
}

// RoleFrom returns the caller role, or empty if unauthenticated.
func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(ctx context.Context) bool {
	return RoleFrom(ctx) == RoleAdmin
}

// RequireAdmin is the single authorization guard for privileged operations.
// It re-checks the claim on every call rather than trusting a cached result.
func RequireAdmin(ctx context.Context) error {
	if _, ok := PrincipalFrom(ctx); !ok {
		return ErrForbidden
	}
	if !IsAdmin(ctx) {
		return ErrForbidden
	}
	return nil
}

// RequirePrincipal returns the caller principal or ErrUnauthenticated.
func RequirePrincipal(ctx context.Context) (string, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return p, nil
}
