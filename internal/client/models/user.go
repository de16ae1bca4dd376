package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// UserProfile is the typed projection of the user object held by the session.
type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	Balance   Amount `json:"balance"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email,omitempty"`
}

// User is the session's user object. It keeps every field the backend sent,
// typed or not, so a shallow merge never drops fields it does not know about.
type User struct {
	fields map[string]json.RawMessage
}

// NewUserFromLogin captures the user projection of a login response.
func NewUserFromLogin(r *LoginResponse) (*User, error) {
	u := &User{fields: make(map[string]json.RawMessage, 5)}
	for name, v := range map[string]any{
		"id":         r.UserID,
		"username":   r.Username,
		"is_admin":   r.IsAdmin,
		"balance":    r.Balance,
		"avatar_url": r.AvatarURL,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode user field %s: %w", name, err)
		}
		u.fields[name] = raw
	}
	return u, nil
}

// Clone returns an independent copy; nil stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	return &User{fields: maps.Clone(u.fields)}
}

// Merge returns a copy of u with patch applied on top: fields present in
// patch overwrite, absent fields keep their value. u itself is not modified.
func (u *User) Merge(patch map[string]json.RawMessage) *User {
	merged := &User{fields: make(map[string]json.RawMessage, len(patch))}
	if u != nil {
		maps.Copy(merged.fields, u.fields)
	}
	maps.Copy(merged.fields, patch)
	return merged
}

// Field returns the raw JSON of a single field.
func (u *User) Field(name string) (json.RawMessage, bool) {
	if u == nil {
		return nil, false
	}
	v, ok := u.fields[name]
	return v, ok
}

// Profile decodes the typed projection. Fields that are missing or carry an
// unexpected type keep their zero value.
func (u *User) Profile() UserProfile {
	var p UserProfile
	if u == nil {
		return p
	}
	decodeField(u.fields, "id", &p.ID)
	decodeField(u.fields, "username", &p.Username)
	decodeField(u.fields, "is_admin", &p.IsAdmin)
	decodeField(u.fields, "balance", &p.Balance)
	decodeField(u.fields, "avatar_url", &p.AvatarURL)
	decodeField(u.fields, "email", &p.Email)
	return p
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func (u *User) MarshalJSON() ([]byte, error) {
	if u == nil {
		return []byte("null"), nil
	}
	return json.Marshal(u.fields)
}

func (u *User) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	u.fields = fields
	return nil
}

// DecodeUser parses a persisted user. Empty input and JSON null both mean
// "no user" and yield (nil, nil).
func DecodeUser(data []byte) (*User, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	u := &User{}
	if err := json.Unmarshal(data, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// Amount is a money value. The backend sends it as a JSON number on login
// and as a decimal string ("12.50") elsewhere; both decode.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*a = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	if s == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(a), 'f', -1, 64)), nil
}

func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}
