// Package auth carries the identity verified by the upstream authenticator.
package auth

import (
	"context"
	"errors"
	"strings"
)

// RoleAdmin grants access to the cross-owner listing, deletion and ranking routes.
const RoleAdmin = "ADMIN"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAdmin        = errors.New("admin role required")
)

// Principal is the authenticated caller.
type Principal struct {
	Email string
	Roles []string
}

// HasRole reports whether p holds role, ignoring case.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}

	return false
}

type principalKey struct{}

// WithPrincipal adds p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)

	return p, ok && p.Email != ""
}

// Require returns the caller or ErrUnauthenticated.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}

	return p, nil
}

// RequireAdmin returns the caller if it holds RoleAdmin.
func RequireAdmin(ctx context.Context) (Principal, error) {
	p, err := Require(ctx)
	if err != nil {
		return Principal{}, err
	}

	if !p.HasRole(RoleAdmin) {
		return Principal{}, ErrNotAdmin
	}

	return p, nil
}
