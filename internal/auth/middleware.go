package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dropshipManagement/repository"
)

// Sentinel errors mapped to HTTP status codes by the transport layer.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
)

// Middleware returns HTTP middleware that extracts and validates a Bearer JWT
// from incoming requests and injects the Principal into the request context.
// Paths listed in allowUnauthenticated bypass authentication (e.g., /healthz).
func Middleware(secret string, allowUnauthenticated ...string) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, p := range allowUnauthenticated {
		allow[strings.TrimSpace(p)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allow[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			p, err := ParseFromRequest(r, secret)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":"auth error: %v"}`, err), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: missing principal", ErrUnauthenticated)
	}
	return p, nil
}

// RequireKind ensures the principal has the given kind (lowercased compare).
func RequireKind(ctx context.Context, kind string) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Kind != strings.ToLower(kind) {
		return nil, fmt.Errorf("%w: only %s can perform this action", ErrPermissionDenied, strings.ToLower(kind))
	}
	return p, nil
}

// RequireCustomerOrAdmin ensures the caller is a customer or admin.
func RequireCustomerOrAdmin(ctx context.Context) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Kind != "customer" && p.Kind != "admin" {
		return nil, fmt.Errorf("%w: only customer or admin can perform this action", ErrPermissionDenied)
	}
	return p, nil
}

// RequireAdmin ensures the caller is an admin principal AND that the
// underlying user exists with role 'admin'. This prevents spoofing by a
// non-admin holding a forged kind claim.
func RequireAdmin(ctx context.Context, users repository.UserRepositoryI) (*Principal, error) {
	p, err := RequireKind(ctx, "admin")
	if err != nil {
		return nil, err
	}
	if users == nil {
		return nil, errors.New("users repository not configured")
	}
	u, err := users.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || !u.IsAdmin() {
		return nil, fmt.Errorf("%w: only admin can perform this action", ErrPermissionDenied)
	}
	return p, nil
}
