package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/server/auth"
)

func newAuthFixture(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	p := &profile.Profile{
		Mode:           "dev",
		Secret:         "test-secret",
		AdminEmails:    "admin@example.com",
		AdminTokenHash: string(hash),
	}
	signer := auth.NewSessionSigner(p.Secret)
	gate := auth.NewAdminGate(signer, p.AdminEmailList())
	return NewAPIV1Service(p, nil, nil, nil, nil, signer, gate), echo.New()
}

func TestCreateSession(t *testing.T) {
	svc, e := newAuthFixture(t)

	do := func(body string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		return rec, svc.createSession(e.NewContext(req, rec))
	}

	rec, err := do(`{"email":"admin@example.com","adminToken":"letmein"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())
	require.Equal(t, auth.SessionCookieName, rec.Result().Cookies()[0].Name)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "admin@example.com", resp.Email)
	require.True(t, resp.IsAdmin)

	_, err = do(`{"email":"admin@example.com","adminToken":"wrong"}`)
	requireHTTPError(t, err, http.StatusUnauthorized)

	_, err = do(`{"email":"stranger@example.com","adminToken":"letmein"}`)
	requireHTTPError(t, err, http.StatusUnauthorized)

	svc.profile.AdminTokenHash = ""
	_, err = do(`{"email":"admin@example.com","adminToken":"letmein"}`)
	requireHTTPError(t, err, http.StatusForbidden)
}

func TestCurrentSession(t *testing.T) {
	svc, e := newAuthFixture(t)

	token, err := svc.signer.Mint("admin@example.com", auth.DefaultSessionTTL)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	require.NoError(t, svc.currentSession(e.NewContext(req, rec)))

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "admin@example.com", resp.Email)
	require.True(t, resp.IsAdmin)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	rec = httptest.NewRecorder()
	err = svc.currentSession(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusUnauthorized)
}

func TestSessionTokenFromBearerHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	c := e.NewContext(req, httptest.NewRecorder())
	require.Equal(t, "abc123", sessionToken(c))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	require.Empty(t, sessionToken(c))
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
