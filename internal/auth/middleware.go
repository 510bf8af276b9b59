package auth

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Headers set by the authenticating proxy in front of the service.
const (
	HeaderEmail = "X-Auth-Email"
	HeaderRoles = "X-Auth-Roles"
)

// Middleware stores the Principal described by the identity headers in the request context.
// Requests without an email pass through anonymously; handlers decide whether that is allowed.
func Middleware(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		email := strings.TrimSpace(ctx.Header(HeaderEmail))
		if email == "" {
			next(ctx)

			return
		}

		p := Principal{Email: email, Roles: parseRoles(ctx.Header(HeaderRoles))}

		next(huma.WithContext(ctx, WithPrincipal(ctx.Context(), p)))
	}
}

func parseRoles(raw string) []string {
	var roles []string

	for role := range strings.SplitSeq(raw, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}

	return roles
}
