// Package session bridges token issuance to HTTP cookies.  Both auth
// cookies are httpOnly with SameSite=Lax and root path; the Secure flag
// follows configuration.  Deletion repeats the exact set-time attributes
// so browsers actually drop the cookies.
package session

import (
    "net/http"
    "time"
)

// Cookie names carrying the token pair.
const (
    AccessCookie  = "access"
    RefreshCookie = "refresh"
)

// Manager sets, reads and clears the auth cookies.
type Manager struct {
    secure     bool
    accessTTL  time.Duration
    refreshTTL time.Duration
}

// NewManager builds a Manager.  TTLs size the cookies' Max-Age and should
// match the lifetimes of the tokens placed inside them.
func NewManager(secure bool, accessTTL, refreshTTL time.Duration) *Manager {
    return &Manager{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// SetPair writes both auth cookies on the response.
func (m *Manager) SetPair(w http.ResponseWriter, access, refresh string) {
    m.SetAccess(w, access)
    http.SetCookie(w, m.cookie(RefreshCookie, refresh, int(m.refreshTTL/time.Second)))
}

// SetAccess writes only the access cookie (used by the refresh endpoint,
// which does not rotate the refresh token).
func (m *Manager) SetAccess(w http.ResponseWriter, access string) {
    http.SetCookie(w, m.cookie(AccessCookie, access, int(m.accessTTL/time.Second)))
}

// Access returns the access token from the request, if any.  Absence is
// not an error: anonymous requests simply carry no cookie.
func (m *Manager) Access(r *http.Request) (string, bool) {
    return read(r, AccessCookie)
}

// Refresh returns the refresh token from the request, if any.
func (m *Manager) Refresh(r *http.Request) (string, bool) {
    return read(r, RefreshCookie)
}

// Clear expires both cookies.  Idempotent; safe to call for requests that
// carried no cookies at all.
func (m *Manager) Clear(w http.ResponseWriter) {
    http.SetCookie(w, m.cookie(AccessCookie, "", -1))
    http.SetCookie(w, m.cookie(RefreshCookie, "", -1))
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
    return &http.Cookie{
        Name:     name,
        Value:    value,
        Path:     "/",
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   m.secure,
        SameSite: http.SameSiteLaxMode,
    }
}

func read(r *http.Request, name string) (string, bool) {
    c, err := r.Cookie(name)
    if err != nil || c.Value == "" {
        return "", false
    }
    return c.Value, true
}
