package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelier/event-ticketing/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/organiser/home", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	_ = h(c)
	return rec
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsGarbage(t *testing.T) {
	rec := runProtected(t, "Bearer not.a.token", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 12, "ORGANISER", 15)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAcceptsValidTokenAndRole(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 12, "ORGANISER", 15)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole("ORGANISER"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 12, "SOMETHING_ELSE", 15)
	require.NoError(t, err)
	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole("ORGANISER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleBlocksWhenUnauthenticated(t *testing.T) {
	rec := runProtected(t, "", RequireRole("ORGANISER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
