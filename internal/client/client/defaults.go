package client

import (
	"net/http"
	"sync"

	"github.com/dmitrijs2005/tubeboost/internal/common"
)

// AuthHeaderSink receives session changes so the outbound Authorization
// header always mirrors the token the session store holds.
type AuthHeaderSink interface {
	SetAuthToken(token string)
	ClearAuthToken()
}

// Defaults are the headers attached to every outbound request. One instance
// is owned by the application root and shared by the API client and the
// session store. Safe for concurrent use.
type Defaults struct {
	mu     sync.RWMutex
	header http.Header
}

// NewDefaults returns defaults carrying the tunnel bypass header.
func NewDefaults() *Defaults {
	h := make(http.Header)
	h.Set(common.TunnelBypassHeaderName, common.TunnelBypassHeaderValue)
	return &Defaults{header: h}
}

func (d *Defaults) SetAuthToken(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.header.Set(common.AuthorizationHeaderName, common.AuthorizationScheme+" "+token)
}

func (d *Defaults) ClearAuthToken() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.header.Del(common.AuthorizationHeaderName)
}

// Authorization returns the current Authorization value and whether it is set.
func (d *Defaults) Authorization() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v := d.header.Get(common.AuthorizationHeaderName)
	return v, v != ""
}

// Header returns a copy of the current defaults.
func (d *Defaults) Header() http.Header {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.header.Clone()
}

func (d *Defaults) apply(req *http.Request) {
	for k, vs := range d.Header() {
		req.Header[k] = vs
	}
}
