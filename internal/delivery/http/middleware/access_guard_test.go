package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"backoffice/config"
	"backoffice/internal/delivery/http/session"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore reads sessions fine but refuses every write, modeling a broken
// cookie write path.
type failingStore struct {
	inner sessions.Store
}

func (s *failingStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New builds the session bound to the failing store itself; delegating
// wholesale would bind it to the inner store and bypass the Save override.
func (s *failingStore) New(r *http.Request, name string) (*sessions.Session, error) {
	inner, err := s.inner.New(r, name)
	sess := sessions.NewSession(s, name)
	if inner != nil {
		sess.ID = inner.ID
		sess.Values = inner.Values
		sess.Options = inner.Options
		sess.IsNew = inner.IsNew
	}

	return sess, err
}

func (s *failingStore) Save(*http.Request, http.ResponseWriter, *sessions.Session) error {
	return errors.New("store unavailable")
}

type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)

	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func (h *capturingHandler) find(message string) (slog.Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message == message {
			return r, true
		}
	}

	return slog.Record{}, false
}

func TestBounceSurvivesSessionSaveFailure(t *testing.T) {
	logHandler := &capturingHandler{}
	store := &failingStore{inner: session.NewStore(&config.Config{
		Session: &config.SessionConfig{Secret: "test-secret", MaxAge: 1800},
	})}

	e := echo.New()
	e.Use(session.Middleware(store))
	guard := NewAccessGuard(slog.New(logHandler))

	protected := e.Group("/admin")
	protected.Use(guard.RequireVerified)
	protected.GET("/products", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/products?page=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The capture could not be persisted, but the client still reaches the
	// login stage.
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	record, ok := logHandler.find("Captured destination lost")
	require.True(t, ok, "the lost destination must leave a breadcrumb")

	var destination string
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == "destination" {
			destination = a.Value.String()
		}

		return true
	})
	assert.True(t, strings.HasPrefix(destination, "/admin/products"))
	assert.Contains(t, destination, "page=2")
}
