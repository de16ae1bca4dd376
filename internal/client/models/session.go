// Package models holds the client-side data types exchanged with the
// backend and kept in local storage.
package models

// Credentials is an opaque bag of form fields forwarded verbatim to the
// login and registration endpoints.
type Credentials map[string]any

// LoginResponse is the body of POST /api/users/login/.
type LoginResponse struct {
	Token     string  `json:"token"`
	UserID    int64   `json:"user_id"`
	Username  string  `json:"username"`
	IsAdmin   bool    `json:"is_admin"`
	Balance   Amount  `json:"balance"`
	AvatarURL *string `json:"avatar_url"`
}

// Session is a snapshot of the authenticated state. Token is empty when
// anonymous.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
