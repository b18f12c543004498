package session

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/config"
	"backoffice/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: &config.SessionConfig{
			Secret:        "test-signing-secret",
			EncryptionKey: "test-encryption-secret",
			MaxAge:        1800,
		},
	}
}

func newTestEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(NewStore(cfg)))

	return e
}

// decodedLayers peels the cookie value the way a client without key material
// can: base64 decoding, splitting on the envelope separator, and base64
// decoding again. Every byte slice reachable that way is returned.
func decodedLayers(value string) []string {
	layers := []string{value}

	decode := func(s string) (string, bool) {
		for _, enc := range []*base64.Encoding{
			base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding, base64.RawStdEncoding,
		} {
			if raw, err := enc.DecodeString(s); err == nil {
				return string(raw), true
			}
		}

		return "", false
	}

	if outer, ok := decode(value); ok {
		layers = append(layers, outer)
		for _, part := range strings.Split(outer, "|") {
			layers = append(layers, part)
			if inner, ok := decode(part); ok {
				layers = append(layers, inner)
			}
		}
	}

	return layers
}

func TestCookiePayloadDoesNotExposePendingCode(t *testing.T) {
	e := newTestEcho(testConfig())
	e.GET("/seed", func(c echo.Context) error {
		auth := Load(c)
		auth.BeginLogin(&entity.User{
			ID:    uuid.New(),
			Name:  "Admin",
			Email: "admin@example.com",
			Role:  entity.RoleAdministrator,
		})
		auth.SetChallenge("123456", time.Now().Add(5*time.Minute))
		require.NoError(t, Save(c, auth))

		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/seed", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "backoffice_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie must be set")

	// A keyless client must not be able to read the code (or anything else)
	// out of the cookie it carries.
	for _, layer := range decodedLayers(cookie.Value) {
		assert.NotContains(t, layer, "123456")
		assert.NotContains(t, layer, "admin@example.com")
	}
}

func TestCookieRoundTripRestoresChallenge(t *testing.T) {
	cfg := testConfig()
	e := newTestEcho(cfg)
	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	userID := uuid.New()

	e.GET("/seed", func(c echo.Context) error {
		auth := Load(c)
		auth.BeginLogin(&entity.User{ID: userID, Name: "Admin", Email: "admin@example.com", Role: entity.RoleAdministrator})
		auth.SetChallenge("654321", expiry)
		require.NoError(t, Save(c, auth))

		return c.NoContent(http.StatusOK)
	})
	e.GET("/check", func(c echo.Context) error {
		auth := Load(c)
		assert.Equal(t, entity.StatePendingMFA, auth.State())
		assert.Equal(t, userID, auth.PrincipalID)
		assert.Equal(t, "654321", auth.PendingCode)
		assert.True(t, expiry.Equal(auth.PendingCodeExpiry.Truncate(time.Second)))

		return c.NoContent(http.StatusOK)
	})

	seedReq := httptest.NewRequest(http.MethodGet, "/seed", nil)
	seedRec := httptest.NewRecorder()
	e.ServeHTTP(seedRec, seedReq)
	require.Equal(t, http.StatusOK, seedRec.Code)

	checkReq := httptest.NewRequest(http.MethodGet, "/check", nil)
	for _, c := range seedRec.Result().Cookies() {
		checkReq.AddCookie(c)
	}
	checkRec := httptest.NewRecorder()
	e.ServeHTTP(checkRec, checkReq)
	require.Equal(t, http.StatusOK, checkRec.Code)
}

func TestTamperedCookieYieldsAnonymousSession(t *testing.T) {
	e := newTestEcho(testConfig())
	e.GET("/check", func(c echo.Context) error {
		auth := Load(c)
		assert.Equal(t, entity.StateAnonymous, auth.State())

		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	req.AddCookie(&http.Cookie{Name: "backoffice_session", Value: "not-a-valid-envelope"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreFallsBackToDerivedEncryptionKey(t *testing.T) {
	cfg := testConfig()
	cfg.Session.EncryptionKey = ""
	e := newTestEcho(cfg)

	e.GET("/seed", func(c echo.Context) error {
		auth := Load(c)
		auth.BeginLogin(&entity.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: entity.RoleAdministrator})
		auth.SetChallenge("123456", time.Now().Add(5*time.Minute))
		require.NoError(t, Save(c, auth))

		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/seed", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name != "backoffice_session" {
			continue
		}
		for _, layer := range decodedLayers(cookie.Value) {
			assert.NotContains(t, layer, "123456")
		}
	}
}
