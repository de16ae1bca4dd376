// Package common contains constants and small helpers shared across the
// client packages.
package common

const (
	// AuthorizationHeaderName carries the session token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationScheme prefixes the token in the Authorization header.
	AuthorizationScheme = "Token"

	// TunnelBypassHeaderName suppresses the interstitial warning page served by
	// the ngrok tunnel used for development backends.
	TunnelBypassHeaderName  = "ngrok-skip-browser-warning"
	TunnelBypassHeaderValue = "true"

	// DefaultAPIURL is used when no backend URL is configured.
	DefaultAPIURL = "http://localhost:8000"
)
