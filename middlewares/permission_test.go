package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", AuthMiddleware(), RequireGroups(StoreAdministrators), func(c *gin.Context) {
		username, _ := utils.GetUsernameFromContext(c.Request.Context())
		c.String(http.StatusOK, username)
	})
	return r
}

func doGet(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireGroups(t *testing.T) {
	t.Setenv("API_SECRET", "middleware-secret")
	r := newProtectedRouter()

	t.Run("anonymous", func(t *testing.T) {
		w := doGet(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not a member", func(t *testing.T) {
		token, err := utils.JwtGenerate("bob", []string{"customers"})
		require.NoError(t, err)
		w := doGet(r, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("store administrator", func(t *testing.T) {
		token, err := utils.JwtGenerate("alice", []string{"customers", StoreAdministrators})
		require.NoError(t, err)
		w := doGet(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	t.Setenv("API_SECRET", "middleware-secret")
	r := newProtectedRouter()

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer not-a-jwt").Code)
}

func TestCorrelationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		id, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(CorrelationIdHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIdHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(CorrelationIdHeader))
}
