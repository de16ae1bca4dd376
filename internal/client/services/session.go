// Package services contains the application services of the tubeboost
// client. This file holds the session store: login, registration, profile
// refresh, and logout, with the session mirrored in local storage and in the
// outbound Authorization header.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/models"
	"github.com/dmitrijs2005/tubeboost/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tubeboost/internal/dbx"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEmptyToken is returned when the backend accepts a login but issues no token.
	ErrEmptyToken = errors.New("login response carries no token")

	// ErrLoginSuperseded is returned by a login whose response arrived after
	// a newer login was issued or the session was logged out. The response
	// is discarded and the session is left as the newer call made it.
	ErrLoginSuperseded = errors.New("login superseded by a newer session change")
)

const (
	avatarPlaceholderURL  = "https://ui-avatars.com/api/?name="
	avatarPlaceholderName = "User"
)

// SessionStore owns the authenticated state of the client.
//
// The store is either anonymous (no token, no user) or authenticated (token
// and user). Every transition updates, while holding the store lock, the
// in-memory state, the persisted "token" and "user" keys, and the
// Authorization default of the API client. Network calls never run under
// the lock.
//
// Concurrent logins with identical credentials share one request and its
// outcome. Among logins with different credentials, only the most recently
// issued one may commit, whether or not it succeeds; an explicit Logout also
// invalidates logins that are still in flight. A discarded login reports
// ErrLoginSuperseded.
type SessionStore struct {
	api     client.AuthAPI
	db      *sql.DB
	headers client.AuthHeaderSink
	log     logging.Logger

	logins singleflight.Group

	mu    sync.RWMutex
	token string
	user  *models.User
	epoch uint64
}

// NewSessionStore rehydrates the session persisted in db without contacting
// the backend. When a token is found, the store starts authenticated and the
// Authorization default is installed immediately.
func NewSessionStore(ctx context.Context, api client.AuthAPI, db *sql.DB, headers client.AuthHeaderSink, log logging.Logger) (*SessionStore, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &SessionStore{api: api, db: db, headers: headers, log: log.With("component", "session")}

	repo := metadata.NewSQLiteRepository(db)

	token, err := repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}
	rawUser, err := repo.Get(ctx, metadata.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}

	user, err := models.DecodeUser(rawUser)
	if err != nil {
		s.log.Warn(ctx, "discarding unreadable persisted user", "error", err)
		user = nil
	}

	s.token = string(token)
	s.user = user

	if s.token != "" {
		s.headers.SetAuthToken(s.token)
		s.log.Debug(ctx, "session rehydrated", "username", user.Profile().Username)
	} else {
		s.headers.ClearAuthToken()
	}

	return s, nil
}

// Login authenticates against the backend. On success the token and the
// user projection are stored, persisted, and the Authorization default is
// installed. Backend errors are returned unchanged and leave the state as
// it was.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) error {
	resp, issued, err := s.callLogin(ctx, creds)
	if err != nil {
		return err
	}
	if resp == nil || resp.Token == "" {
		return ErrEmptyToken
	}

	user, err := models.NewUserFromLogin(resp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if issued != s.epoch {
		s.log.Warn(ctx, "discarding superseded login response", "username", resp.Username)
		return ErrLoginSuperseded
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyToken, []byte(resp.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUser, rawUser)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.token = resp.Token
	s.user = user
	s.headers.SetAuthToken(resp.Token)

	s.log.Info(ctx, "logged in", "username", resp.Username)
	return nil
}

type loginResult struct {
	resp   *models.LoginResponse
	issued uint64
}

// callLogin coalesces concurrent logins that carry identical credentials.
// The shared request takes one sequence number for all of its callers and
// runs detached from any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (s *SessionStore) callLogin(ctx context.Context, creds models.Credentials) (*models.LoginResponse, uint64, error) {
	key, err := json.Marshal(creds)
	if err != nil {
		return nil, 0, fmt.Errorf("encode credentials: %w", err)
	}

	detached := context.WithoutCancel(ctx)
	ch := s.logins.DoChan(string(key), func() (any, error) {
		s.mu.Lock()
		s.epoch++
		issued := s.epoch
		s.mu.Unlock()

		resp, err := s.api.Login(detached, creds)
		return loginResult{resp: resp, issued: issued}, err
	})

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug(ctx, "login request shared with a concurrent call")
		}
		if res.Err != nil {
			return nil, 0, res.Err
		}
		r := res.Val.(loginResult)
		return r.resp, r.issued, nil
	}
}

// Register creates an account. It never changes the session; backend errors
// are returned unchanged.
func (s *SessionStore) Register(ctx context.Context, creds models.Credentials) error {
	if err := s.api.Register(ctx, creds); err != nil {
		return err
	}
	s.log.Info(ctx, "account registered")
	return nil
}

// FetchProfile refreshes the user from the backend. It does nothing when
// anonymous. On success the response is shallow-merged into the stored user
// and persisted. On failure the session the request was issued for is torn
// down and the backend error is returned.
func (s *SessionStore) FetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.mu.Unlock()
		return nil
	}
	s.headers.SetAuthToken(token)
	s.mu.Unlock()

	fields, fetchErr := s.api.Profile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		s.log.Debug(ctx, "session changed during profile fetch, result dropped")
		return fetchErr
	}

	if fetchErr != nil {
		s.log.Warn(ctx, "profile fetch failed, logging out", "error", fetchErr)
		if err := s.clearLocked(ctx); err != nil {
			return errors.Join(fetchErr, err)
		}
		return fetchErr
	}

	merged := s.user.Merge(fields)
	rawUser, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, metadata.KeyUser, rawUser); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.user = merged

	return nil
}

// Logout ends the session unconditionally: memory, persisted keys, and the
// Authorization default are all cleared. Calling it again is harmless.
// A returned error reports a local storage failure; the in-memory session
// is cleared regardless.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	return s.clearLocked(ctx)
}

func (s *SessionStore) clearLocked(ctx context.Context) error {
	wasAuthenticated := s.token != ""

	s.token = ""
	s.user = nil
	s.headers.ClearAuthToken()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, metadata.KeyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyUser)
	})
	if err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}

	if wasAuthenticated {
		s.log.Info(ctx, "logged out")
	}
	return nil
}

// IsAuthenticated reports whether a token is held.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsAdmin reports the user's is_admin flag; false without a user.
func (s *SessionStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Profile().IsAdmin
}

// UserAvatar returns the stored avatar URL, or a generated placeholder keyed
// by the username ("User" when there is none).
func (s *SessionStore) UserAvatar() string {
	s.mu.RLock()
	p := s.user.Profile()
	s.mu.RUnlock()

	if p.AvatarURL != "" {
		return p.AvatarURL
	}
	name := p.Username
	if name == "" {
		name = avatarPlaceholderName
	}
	return avatarPlaceholderURL + url.QueryEscape(name)
}

// Token returns the current token, "" when anonymous.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, nil when there is none.
func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Profile returns the typed projection of the current user.
func (s *SessionStore) Profile() models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Profile()
}

// Session returns a consistent snapshot of token and user.
func (s *SessionStore) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Session{Token: s.token, User: s.user.Clone()}
}
