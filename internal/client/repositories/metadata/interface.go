// Package metadata stores the client's small key/value state: the session
// token, the serialized user, and the device registration cookie.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken              = "token"
	KeyUser               = "user"
	KeyRegistrationCookie = "registration_cookie"
)

// Repository is a key/value store. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
