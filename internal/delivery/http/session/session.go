// Package session bridges the typed authentication session onto the cookie
// store. It is the only place that touches raw session values; everything
// else works with entity.AuthSession.
package session

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"

	"backoffice/config"
	"backoffice/internal/domain/entity"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// sessionName is the cookie name carrying the authentication session.
	sessionName = "backoffice_session"

	// authKey is the single session value. The whole AuthSession travels as
	// one typed blob, so no stage can leave stray keys behind.
	authKey = "auth"
)

func init() {
	gob.Register(&entity.AuthSession{})
}

// NewStore builds the cookie store from configuration. The hash key signs the
// cookie and the block key encrypts it with AES-256; the session carries the
// pending one-time code, so the payload must be opaque to the client that is
// being challenged with that code.
func NewStore(cfg *config.Config) sessions.Store {
	hashKey := sha256.Sum256([]byte("sign:" + cfg.Session.Secret))

	encSecret := cfg.Session.EncryptionKey
	if encSecret == "" {
		encSecret = cfg.Session.Secret
	}
	blockKey := sha256.Sum256([]byte("encrypt:" + encSecret))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// Middleware returns the Echo session middleware bound to the store.
func Middleware(store sessions.Store) echo.MiddlewareFunc {
	return echosession.Middleware(store)
}

// Load returns the request's authentication session. A missing or undecodable
// value yields a fresh anonymous session rather than an error; a tampered
// cookie must never grant more than anonymity.
func Load(c echo.Context) *entity.AuthSession {
	sess, err := echosession.Get(sessionName, c)
	if err != nil {
		return &entity.AuthSession{}
	}

	if auth, ok := sess.Values[authKey].(*entity.AuthSession); ok && auth != nil {
		return auth
	}

	return &entity.AuthSession{}
}

// Save persists the authentication session back onto the response cookie.
func Save(c echo.Context, auth *entity.AuthSession) error {
	sess, err := echosession.Get(sessionName, c)
	if err != nil {
		return errors.Wrap(err, "failed to open session")
	}

	sess.Values[authKey] = auth

	return errors.Wrap(sess.Save(c.Request(), c.Response()), "failed to save session")
}

// Destroy clears the session value and expires the cookie.
func Destroy(c echo.Context) error {
	sess, err := echosession.Get(sessionName, c)
	if err != nil {
		return errors.Wrap(err, "failed to open session")
	}

	delete(sess.Values, authKey)
	sess.Options.MaxAge = -1

	return errors.Wrap(sess.Save(c.Request(), c.Response()), "failed to destroy session")
}
