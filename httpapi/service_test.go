package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/database-playground/account-eraser/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingService struct{}

func (pingService) Register(app gin.IRouter) {
	app.POST("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	app.POST("/panic", func(c *gin.Context) {
		panic("SUPABASE_SERVICE_ROLE_KEY=secret")
	})
}

func newEngine() *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(httpapi.MethodNotAllowed)
	engine.Use(httpapi.Recovery())

	httpapi.Register(engine.Group("/api"), pingService{})

	return engine
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newEngine()

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newEngine()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, httptest.NewRequest(method, "/api/ping", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.Equal(t, "Method Not Allowed", rr.Body.String(), method)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newEngine()

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "secret")
}
