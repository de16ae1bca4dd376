// Package client is the HTTP side of the tubeboost terminal client.
//
// # Overview
//
// The package provides:
//  1. The backend contract (AuthAPI, ContentAPI, OrdersAPI, and their union
//     Client).
//  2. RESTClient, a JSON-over-HTTP implementation.
//  3. Base URL resolution (ResolveBaseURL): default backend, trailing slash
//     trim, and the http→https upgrade for secure origins.
//  4. Defaults, the process-wide request headers: the tunnel bypass header
//     and the Authorization header that the session store keeps in sync
//     through the AuthHeaderSink interface.
//
// # Error Handling
//
// Non-2xx responses are returned as *HTTPError. errors.Is(err,
// ErrUnauthorized) matches 401/403 and errors.Is(err, ErrUnavailable)
// matches transport failures and 502-504.
//
// All operations accept a context.Context; no other timeout is configured.
package client
