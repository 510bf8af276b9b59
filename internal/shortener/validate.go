package shortener

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	MaxURLLength   = 2048
	MaxAliasLength = 20
)

// reservedAliases collide with routes served next to the redirect path.
var reservedAliases = map[string]struct{}{
	"admin":     {},
	"analytics": {},
	"api":       {},
	"docs":      {},
	"health":    {},
	"openapi":   {},
	"schemas":   {},
	"shorten":   {},
}

// ValidateURL checks that rawURL is an absolute http(s) URL within the length limit.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("%w: original url is required", ErrInvalidRequest)
	}

	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w: original url exceeds %d characters", ErrInvalidRequest, MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed original url", ErrInvalidRequest)
	}

	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: original url must be an absolute http or https url", ErrInvalidRequest)
	}

	return nil
}

// ValidateAlias checks a custom alias. Aliases may contain letters, digits, '-' and '_'.
func ValidateAlias(alias string) error {
	if len(alias) > MaxAliasLength {
		return fmt.Errorf("%w: alias exceeds %d characters", ErrInvalidRequest, MaxAliasLength)
	}

	for _, r := range alias {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: alias contains invalid character %q", ErrInvalidRequest, r)
		}
	}

	if _, ok := reservedAliases[strings.ToLower(alias)]; ok {
		return fmt.Errorf("%w: alias %q is reserved", ErrInvalidRequest, alias)
	}

	return nil
}
