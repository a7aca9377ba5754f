// Package sessionstore carries the per-share "password already verified"
// flag across requests. The share service treats it as an injected
// capability; the cookie store is the one piece of framework soft state in
// the system.
package sessionstore

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "brandforge_share"

// Store reads and writes share-authentication flags scoped to the caller's
// session.
type Store interface {
	Authenticated(r *http.Request, shareUUID string) bool
	MarkAuthenticated(w http.ResponseWriter, r *http.Request, shareUUID string) error
}

type CookieStore struct {
	store *sessions.CookieStore
}

func NewCookieStore(secret string) *CookieStore {
	s := sessions.NewCookieStore([]byte(secret))
	s.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieStore{store: s}
}

func (c *CookieStore) Authenticated(r *http.Request, shareUUID string) bool {
	sess, err := c.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	ok, _ := sess.Values["share:"+shareUUID].(bool)
	return ok
}

func (c *CookieStore) MarkAuthenticated(w http.ResponseWriter, r *http.Request, shareUUID string) error {
	sess, err := c.store.Get(r, sessionName)
	if err != nil {
		// A stale or tampered cookie decodes to a fresh session; keep going.
		sess, _ = c.store.New(r, sessionName)
	}
	sess.Values["share:"+shareUUID] = true
	return sess.Save(r, w)
}
