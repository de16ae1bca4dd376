package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/models"
	"github.com/dmitrijs2005/tubeboost/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tubeboost/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(context.Background(), "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertMeta(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

func getMeta(t *testing.T, db *sql.DB, k string) ([]byte, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	require.NoError(t, err)
	return v, true
}

func strptr(s string) *string { return &s }

// ---- fake auth api ----

type fakeAuthAPI struct {
	mu sync.Mutex

	LoginRet    *models.LoginResponse
	LoginErr    error
	RegisterErr error
	ProfileRet  map[string]json.RawMessage
	ProfileErr  error

	// loginFn, when set, replaces the canned login result.
	loginFn func(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	// profileFn, when set, replaces the canned profile result.
	profileFn func(ctx context.Context) (map[string]json.RawMessage, error)

	LoginCalls    int
	RegisterCalls int
	ProfileCalls  int

	LastLoginCreds    models.Credentials
	LastRegisterCreds models.Credentials
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.LastLoginCreds = creds
	fn, ret, err := f.loginFn, f.LoginRet, f.LoginErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, creds)
	}
	return ret, err
}

func (f *fakeAuthAPI) Register(_ context.Context, creds models.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastRegisterCreds = creds
	return f.RegisterErr
}

func (f *fakeAuthAPI) Profile(ctx context.Context) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	f.ProfileCalls++
	fn, ret, err := f.profileFn, f.ProfileRet, f.ProfileErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return ret, err
}

func (f *fakeAuthAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginCalls + f.RegisterCalls + f.ProfileCalls
}

func aliceLogin() *models.LoginResponse {
	return &models.LoginResponse{
		Token:     "tok-alice",
		UserID:    7,
		Username:  "alice",
		IsAdmin:   false,
		Balance:   10,
		AvatarURL: nil,
	}
}

func newStore(t *testing.T, api *fakeAuthAPI, db *sql.DB) (*SessionStore, *client.Defaults) {
	t.Helper()
	headers := client.NewDefaults()
	s, err := NewSessionStore(context.Background(), api, db, headers, nil)
	require.NoError(t, err)
	return s, headers
}

func seedSession(t *testing.T, db *sql.DB) {
	t.Helper()
	insertMeta(t, db, metadata.KeyToken, []byte("tok-alice"))
	insertMeta(t, db, metadata.KeyUser, []byte(`{"id":7,"username":"alice","is_admin":false,"balance":10,"avatar_url":null}`))
}

// ---- rehydration ----

func TestNewSessionStore_EmptyStorage_Anonymous(t *testing.T) {
	api := &fakeAuthAPI{}
	s, headers := newStore(t, api, setupDB(t))

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	_, ok := headers.Authorization()
	assert.False(t, ok)
	assert.Zero(t, api.calls())
}

func TestNewSessionStore_PersistedSession_Authenticated(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{}
	s, headers := newStore(t, api, db)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-alice", s.Token())
	assert.Equal(t, "alice", s.Profile().Username)
	auth, ok := headers.Authorization()
	require.True(t, ok)
	assert.Equal(t, "Token tok-alice", auth)
	assert.Zero(t, api.calls(), "rehydration must not touch the network")
}

func TestNewSessionStore_TokenWithoutUser_StillAuthenticated(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, metadata.KeyToken, []byte("t"))

	s, _ := newStore(t, &fakeAuthAPI{}, db)
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.False(t, s.IsAdmin())
}

func TestNewSessionStore_CorruptUser_Dropped(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, metadata.KeyToken, []byte("t"))
	insertMeta(t, db, metadata.KeyUser, []byte("{not json"))

	s, _ := newStore(t, &fakeAuthAPI{}, db)
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

// ---- login ----

func TestLogin_Success_PersistsAndInstallsHeader(t *testing.T) {
	db := setupDB(t)
	api := &fakeAuthAPI{LoginRet: aliceLogin()}
	s, headers := newStore(t, api, db)

	creds := models.Credentials{"username": "alice", "password": "pw"}
	require.NoError(t, s.Login(context.Background(), creds))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-alice", s.Token())
	assert.Equal(t, creds, api.LastLoginCreds)

	auth, ok := headers.Authorization()
	require.True(t, ok)
	assert.Equal(t, "Token tok-alice", auth)

	tok, ok := getMeta(t, db, metadata.KeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok-alice", string(tok))

	rawUser, ok := getMeta(t, db, metadata.KeyUser)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":7,"username":"alice","is_admin":false,"balance":10,"avatar_url":null}`, string(rawUser))

	p := s.Profile()
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, models.Amount(10), p.Balance)
}

func TestLogin_Error_PropagatesUnchangedAndKeepsState(t *testing.T) {
	db := setupDB(t)
	backendErr := &client.HTTPError{Method: "POST", Path: "/api/users/login/", StatusCode: 400, Body: []byte(`{"detail":"bad"}`)}
	api := &fakeAuthAPI{LoginErr: backendErr}
	s, headers := newStore(t, api, db)

	err := s.Login(context.Background(), models.Credentials{"username": "x"})
	require.Error(t, err)
	assert.Same(t, backendErr, err)

	assert.False(t, s.IsAuthenticated())
	_, ok := headers.Authorization()
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyToken)
	assert.False(t, ok)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{LoginRet: &models.LoginResponse{Token: "tok-bob", UserID: 8, Username: "bob", IsAdmin: true}}
	s, headers := newStore(t, api, db)

	require.NoError(t, s.Login(context.Background(), models.Credentials{"username": "bob"}))
	assert.Equal(t, "tok-bob", s.Token())
	assert.True(t, s.IsAdmin())
	auth, _ := headers.Authorization()
	assert.Equal(t, "Token tok-bob", auth)
}

func TestLogin_IdenticalConcurrentCalls_ShareOneRequest(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	api := &fakeAuthAPI{}
	api.loginFn = func(ctx context.Context, _ models.Credentials) (*models.LoginResponse, error) {
		entered <- struct{}{}
		<-release
		return aliceLogin(), nil
	}
	s, _ := newStore(t, api, setupDB(t))

	creds := models.Credentials{"username": "alice", "password": "pw"}
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Login(context.Background(), creds)
		}()
		if i == 0 {
			<-entered
		}
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, api.LoginCalls)
	assert.Equal(t, "tok-alice", s.Token())
}

func TestLogin_SupersededResponseDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAuthAPI{}
	api.loginFn = func(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
		if creds["username"] == "slow" {
			close(entered)
			<-release
			return &models.LoginResponse{Token: "tok-slow", Username: "slow"}, nil
		}
		return &models.LoginResponse{Token: "tok-fast", Username: "fast"}, nil
	}
	db := setupDB(t)
	s, headers := newStore(t, api, db)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- s.Login(context.Background(), models.Credentials{"username": "slow"})
	}()
	<-entered

	require.NoError(t, s.Login(context.Background(), models.Credentials{"username": "fast"}))
	close(release)
	require.ErrorIs(t, <-slowErr, ErrLoginSuperseded)

	assert.Equal(t, "tok-fast", s.Token())
	auth, _ := headers.Authorization()
	assert.Equal(t, "Token tok-fast", auth)
	tok, _ := getMeta(t, db, metadata.KeyToken)
	assert.Equal(t, "tok-fast", string(tok))
}

func TestLogin_LogoutWhileInFlight_StaysLoggedOut(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAuthAPI{}
	api.loginFn = func(context.Context, models.Credentials) (*models.LoginResponse, error) {
		close(entered)
		<-release
		return aliceLogin(), nil
	}
	db := setupDB(t)
	s, headers := newStore(t, api, db)

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), models.Credentials{"username": "alice"}) }()
	<-entered

	require.NoError(t, s.Logout(context.Background()))
	close(release)
	require.ErrorIs(t, <-done, ErrLoginSuperseded)

	assert.False(t, s.IsAuthenticated())
	_, ok := headers.Authorization()
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyToken)
	assert.False(t, ok)
}

func TestLogin_NewerFailingLogin_SlowLoginReportsSuperseded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	rejected := &client.HTTPError{Method: "POST", Path: "/api/users/login/", StatusCode: 400, Body: []byte(`{"detail":"bad credentials"}`)}

	api := &fakeAuthAPI{}
	api.loginFn = func(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
		if creds["username"] == "slow" {
			close(entered)
			<-release
			return &models.LoginResponse{Token: "tok-slow", Username: "slow"}, nil
		}
		return nil, rejected
	}
	db := setupDB(t)
	s, headers := newStore(t, api, db)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- s.Login(context.Background(), models.Credentials{"username": "slow"})
	}()
	<-entered

	err := s.Login(context.Background(), models.Credentials{"username": "typo"})
	assert.Same(t, rejected, err)
	close(release)

	err = <-slowErr
	require.ErrorIs(t, err, ErrLoginSuperseded)
	assert.False(t, s.IsAuthenticated(), "a login reported as failed must not leave a session behind")
	assert.Empty(t, s.Profile().Username)
	_, ok := headers.Authorization()
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyToken)
	assert.False(t, ok)
}

func TestLogin_SharedRequest_SurvivesOneCallerCanceling(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	api := &fakeAuthAPI{}
	api.loginFn = func(ctx context.Context, _ models.Credentials) (*models.LoginResponse, error) {
		entered <- struct{}{}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return aliceLogin(), nil
	}
	s, _ := newStore(t, api, setupDB(t))
	creds := models.Credentials{"username": "alice", "password": "pw"}

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	first := make(chan error, 1)
	go func() { first <- s.Login(ctx1, creds) }()
	<-entered

	second := make(chan error, 1)
	go func() { second <- s.Login(context.Background(), creds) }()
	time.Sleep(50 * time.Millisecond)

	cancel1()
	require.ErrorIs(t, <-first, context.Canceled)

	close(release)
	require.NoError(t, <-second)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-alice", s.Token())

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.LoginCalls)
}

func TestLogin_CanceledCaller_StopsWaiting(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	api := &fakeAuthAPI{}
	api.loginFn = func(context.Context, models.Credentials) (*models.LoginResponse, error) {
		<-release
		return aliceLogin(), nil
	}
	s, _ := newStore(t, api, setupDB(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Login(ctx, models.Credentials{"username": "alice"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.IsAuthenticated())
}

// ---- register ----

func TestRegister_DelegatesAndKeepsSession(t *testing.T) {
	db := setupDB(t)
	api := &fakeAuthAPI{}
	s, _ := newStore(t, api, db)

	creds := models.Credentials{
		"username":            "carol",
		"email":               "carol@example.com",
		"password":            "pw",
		"confirm_password":    "pw",
		"registration_cookie": "abc",
	}
	require.NoError(t, s.Register(context.Background(), creds))
	assert.Equal(t, creds, api.LastRegisterCreds)
	assert.False(t, s.IsAuthenticated())
}

func TestRegister_ErrorPropagatesUnchanged(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)
	dup := errors.New("dup")
	s, _ := newStore(t, &fakeAuthAPI{RegisterErr: dup}, db)

	err := s.Register(context.Background(), models.Credentials{})
	require.ErrorIs(t, err, dup)
	assert.Equal(t, "tok-alice", s.Token())
}

// ---- fetch profile ----

func TestFetchProfile_NoToken_NoCallNoChange(t *testing.T) {
	api := &fakeAuthAPI{ProfileErr: errors.New("must not be called")}
	s, _ := newStore(t, api, setupDB(t))

	require.NoError(t, s.FetchProfile(context.Background()))
	assert.Zero(t, api.ProfileCalls)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestFetchProfile_Success_ShallowMerge(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{ProfileRet: map[string]json.RawMessage{
		"id":         json.RawMessage(`7`),
		"username":   json.RawMessage(`"alice"`),
		"avatar_url": json.RawMessage(`"https://cdn.example.com/a.png"`),
		"email":      json.RawMessage(`"alice@example.com"`),
	}}
	s, headers := newStore(t, api, db)

	require.NoError(t, s.FetchProfile(context.Background()))
	assert.Equal(t, 1, api.ProfileCalls)

	p := s.Profile()
	assert.Equal(t, models.Amount(10), p.Balance, "balance absent from response must survive")
	assert.Equal(t, "https://cdn.example.com/a.png", p.AvatarURL)
	assert.Equal(t, "alice@example.com", p.Email)

	_, ok := s.User().Field("is_admin")
	assert.True(t, ok)

	rawUser, ok := getMeta(t, db, metadata.KeyUser)
	require.True(t, ok)
	persisted, err := models.DecodeUser(rawUser)
	require.NoError(t, err)
	assert.Equal(t, p, persisted.Profile())

	auth, _ := headers.Authorization()
	assert.Equal(t, "Token tok-alice", auth)
}

func TestFetchProfile_BalanceAsString(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{ProfileRet: map[string]json.RawMessage{"balance": json.RawMessage(`"42.50"`)}}
	s, _ := newStore(t, api, db)

	require.NoError(t, s.FetchProfile(context.Background()))
	assert.Equal(t, models.Amount(42.5), s.Profile().Balance)
	assert.Equal(t, "alice", s.Profile().Username)
}

func TestFetchProfile_ReassertsHeader(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{}
	s, headers := newStore(t, api, db)
	headers.ClearAuthToken()

	api.profileFn = func(context.Context) (map[string]json.RawMessage, error) {
		auth, ok := headers.Authorization()
		if !ok || auth != "Token tok-alice" {
			return nil, errors.New("missing auth header")
		}
		return map[string]json.RawMessage{}, nil
	}

	require.NoError(t, s.FetchProfile(context.Background()))
	assert.True(t, s.IsAuthenticated())
}

func TestFetchProfile_Failure_LogsOutAndReturnsOriginalError(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)
	insertMeta(t, db, metadata.KeyRegistrationCookie, []byte("device"))

	backendErr := &client.HTTPError{Method: "GET", Path: "/api/users/profile/", StatusCode: 401}
	api := &fakeAuthAPI{ProfileErr: backendErr}
	s, headers := newStore(t, api, db)

	err := s.FetchProfile(context.Background())
	require.Error(t, err)
	assert.Same(t, backendErr, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	_, ok := headers.Authorization()
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyToken)
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyUser)
	assert.False(t, ok)
	_, ok = getMeta(t, db, metadata.KeyRegistrationCookie)
	assert.True(t, ok, "device cookie is not part of the session")
}

func TestFetchProfile_SessionChangedInFlight_ResultDropped(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)

	api := &fakeAuthAPI{LoginRet: &models.LoginResponse{Token: "tok-bob", Username: "bob"}}
	s, _ := newStore(t, api, db)

	api.profileFn = func(ctx context.Context) (map[string]json.RawMessage, error) {
		require.NoError(t, s.Login(ctx, models.Credentials{"username": "bob"}))
		return nil, errors.New("stale token rejected")
	}

	err := s.FetchProfile(context.Background())
	require.Error(t, err)

	assert.True(t, s.IsAuthenticated(), "failure for an old token must not end the new session")
	assert.Equal(t, "tok-bob", s.Token())
	assert.Equal(t, "bob", s.Profile().Username)
}

// ---- logout ----

func TestLogout_ClearsEverything_Idempotent(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)
	s, headers := newStore(t, &fakeAuthAPI{}, db)

	for range 2 {
		require.NoError(t, s.Logout(context.Background()))

		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.User())
		assert.Empty(t, s.Token())
		_, ok := headers.Authorization()
		assert.False(t, ok)
		_, ok = getMeta(t, db, metadata.KeyToken)
		assert.False(t, ok)
		_, ok = getMeta(t, db, metadata.KeyUser)
		assert.False(t, ok)
	}

	assert.Equal(t, "true", headers.Header().Get("ngrok-skip-browser-warning"))
}

func TestLogout_Anonymous_NoError(t *testing.T) {
	s, _ := newStore(t, &fakeAuthAPI{}, setupDB(t))
	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

// ---- accessors ----

func TestUserAvatar(t *testing.T) {
	tests := []struct {
		name string
		user string
		want string
	}{
		{"no user", "", "https://ui-avatars.com/api/?name=User"},
		{"stored avatar", `{"username":"alice","avatar_url":"https://cdn/x.png"}`, "https://cdn/x.png"},
		{"null avatar", `{"username":"alice","avatar_url":null}`, "https://ui-avatars.com/api/?name=alice"},
		{"escaped name", `{"username":"a b&c"}`, "https://ui-avatars.com/api/?name=a+b%26c"},
		{"empty name", `{"username":""}`, "https://ui-avatars.com/api/?name=User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			if tt.user != "" {
				insertMeta(t, db, metadata.KeyToken, []byte("t"))
				insertMeta(t, db, metadata.KeyUser, []byte(tt.user))
			}
			s, _ := newStore(t, &fakeAuthAPI{}, db)
			assert.Equal(t, tt.want, s.UserAvatar())
		})
	}
}

func TestIsAdmin(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, metadata.KeyToken, []byte("t"))
	insertMeta(t, db, metadata.KeyUser, []byte(`{"username":"root","is_admin":true}`))

	s, _ := newStore(t, &fakeAuthAPI{}, db)
	assert.True(t, s.IsAdmin())

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsAdmin())
}

func TestUser_ReturnsCopy(t *testing.T) {
	db := setupDB(t)
	seedSession(t, db)
	s, _ := newStore(t, &fakeAuthAPI{}, db)

	u := s.User()
	_ = u.Merge(map[string]json.RawMessage{"username": json.RawMessage(`"mallory"`)})
	assert.Equal(t, "alice", s.Profile().Username)

	snap := s.Session()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "alice", snap.User.Profile().Username)
}

func TestLogin_AvatarURLCaptured(t *testing.T) {
	resp := aliceLogin()
	resp.AvatarURL = strptr("https://cdn/alice.png")
	s, _ := newStore(t, &fakeAuthAPI{LoginRet: resp}, setupDB(t))

	require.NoError(t, s.Login(context.Background(), models.Credentials{}))
	assert.Equal(t, "https://cdn/alice.png", s.UserAvatar())
}
