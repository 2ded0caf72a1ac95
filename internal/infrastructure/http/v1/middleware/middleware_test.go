package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	user *appctx.UserContext
	err  error
}

func (s *stubValidator) ValidateToken(string) (*appctx.UserContext, error) {
	return s.user, s.err
}

func perform(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTraceGeneratesAndEchoesIDs(t *testing.T) {
	router := gin.New()
	router.Use(Trace())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(router, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, rec.Header().Get(HeaderTraceID))

	rec = perform(router, http.MethodGet, "/ping", map[string]string{
		HeaderRequestID: "req-123",
		HeaderTraceID:   "trace-456",
	})
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "trace-456", rec.Header().Get(HeaderTraceID))
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("Nieprawidłowa tabela").WithDetail("table", "no_such"))
	})

	rec := perform(router, http.MethodGet, "/fail", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := errorBody(t, rec)
	assert.Equal(t, apperror.CodeValidation, body["code"])
	assert.Equal(t, "Nieprawidłowa tabela", body["message"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "no_such", details["table"])
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	rec := perform(router, http.MethodGet, "/fail", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := errorBody(t, rec)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.Use(ErrorHandler())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := perform(router, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(&stubValidator{err: errors.New("bad signature")}))
	router.GET("/secure", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(router, http.MethodGet, "/secure", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, http.MethodGet, "/secure", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, http.MethodGet, "/secure", map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthPopulatesUserContext(t *testing.T) {
	validator := &stubValidator{user: &appctx.UserContext{
		UserID: 9,
		Role:   appctx.RoleResident,
	}}

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(Auth(validator))
	router.GET("/secure", func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		require.NotNil(t, user)
		c.JSON(http.StatusOK, gin.H{"role": user.Role})
	})

	rec := perform(router, http.MethodGet, "/secure", map[string]string{"Authorization": "Bearer token"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), appctx.RoleResident)
}

func TestRequireAdmin(t *testing.T) {
	build := func(role string) *gin.Engine {
		router := gin.New()
		router.Use(ErrorHandler())
		router.Use(Auth(&stubValidator{user: &appctx.UserContext{UserID: 1, Role: role}}))
		router.Use(RequireAdmin())
		router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	rec := perform(build(appctx.RoleAdmin), http.MethodGet, "/admin",
		map[string]string{"Authorization": "Bearer t"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(build(appctx.RoleResident), http.MethodGet, "/admin",
		map[string]string{"Authorization": "Bearer t"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperror.CodeForbidden, errorBody(t, rec)["code"])
}

func TestRequireApartmentAccess(t *testing.T) {
	build := func(user *appctx.UserContext) *gin.Engine {
		router := gin.New()
		router.Use(ErrorHandler())
		router.Use(Auth(&stubValidator{user: user}))
		router.GET("/resident/payments/:apt", RequireApartmentAccess("apt"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}
	headers := map[string]string{"Authorization": "Bearer t"}

	resident := &appctx.UserContext{UserID: 3, Role: appctx.RoleResident, ApartmentID: 7}
	rec := perform(build(resident), http.MethodGet, "/resident/payments/7", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(build(resident), http.MethodGet, "/resident/payments/8", headers)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := &appctx.UserContext{UserID: 1, Role: appctx.RoleAdmin}
	rec = perform(build(admin), http.MethodGet, "/resident/payments/8", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}
