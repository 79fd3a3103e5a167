package v1

import (
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/martin635579763/chordsync/server/auth"
)

type createSessionRequest struct {
	Email      string `json:"email"`
	AdminToken string `json:"adminToken"`
}

type sessionResponse struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// createSession exchanges the admin bootstrap token for a signed session
// cookie. The email must be on the admin allow-list; there are no
// non-admin accounts.
func (s *APIV1Service) createSession(c echo.Context) error {
	if s.profile.AdminTokenHash == "" {
		return echo.NewHTTPError(http.StatusForbidden, "session exchange is disabled")
	}

	req := &createSessionRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.Email == "" || req.AdminToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and adminToken are required")
	}
	if !auth.VerifyAdminToken(s.profile.AdminTokenHash, req.AdminToken) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
	}
	if !slices.Contains(s.profile.AdminEmailList(), req.Email) {
		return echo.NewHTTPError(http.StatusUnauthorized, "email is not on the admin allow-list")
	}

	token, err := s.signer.Mint(req.Email, auth.DefaultSessionTTL)
	if err != nil {
		return apiError(err)
	}
	c.SetCookie(s.sessionCookie(token, auth.DefaultSessionTTL))
	return c.JSON(http.StatusOK, &sessionResponse{Email: req.Email, IsAdmin: true})
}

func (s *APIV1Service) currentSession(c echo.Context) error {
	token := sessionToken(c)
	email, err := s.signer.Resolve(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no valid session")
	}
	return c.JSON(http.StatusOK, &sessionResponse{
		Email:   email,
		IsAdmin: s.gate.IsAuthorized(c.Request().Context(), token),
	})
}

func (s *APIV1Service) deleteSession(c echo.Context) error {
	c.SetCookie(s.sessionCookie("", -time.Hour))
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   !s.profile.IsDev(),
		SameSite: http.SameSiteStrictMode,
	}
}
