package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/tubeboost/internal/common"
)

// ResolveBaseURL normalizes the configured backend URL.
//
// An empty raw value selects common.DefaultAPIURL. One trailing slash is
// stripped. When origin, the address the client itself is served from, is
// https and the backend is plain http, the backend scheme is upgraded to
// https so a secure front end never talks to an insecure API.
func ResolveBaseURL(raw, origin string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = common.DefaultAPIURL
	}
	raw = strings.TrimSuffix(raw, "/")

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api url %q: missing host", raw)
	}

	if originIsSecure(origin) && u.Scheme == "http" {
		u.Scheme = "https"
	}

	return u.String(), nil
}

func originIsSecure(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}
