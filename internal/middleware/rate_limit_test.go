package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"savoro_back_end/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	database.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.Redis = nil })
}

func loginRouter(succeed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimit(), func(c *gin.Context) {
		if succeed {
			c.JSON(http.StatusOK, gin.H{"token": "x"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
	})
	return r
}

func postLogin(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"awa@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRateLimitBlocksAfterRepeatedFailures(t *testing.T) {
	setupRateLimitRedis(t)
	r := loginRouter(false)

	for i := 0; i < LoginMaxAttempts; i++ {
		w := postLogin(r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Le budget est épuisé : la tentative suivante déclenche le cooldown.
	w := postLogin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = postLogin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginRateLimitResetsOnSuccess(t *testing.T) {
	setupRateLimitRedis(t)

	failing := loginRouter(false)
	for i := 0; i < LoginMaxAttempts-1; i++ {
		postLogin(failing)
	}

	ok := loginRouter(true)
	w := postLogin(ok)
	assert.Equal(t, http.StatusOK, w.Code)

	// Compteur remis à zéro : on peut de nouveau échouer sans blocage.
	w = postLogin(failing)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimitSkipsWithoutRedis(t *testing.T) {
	database.Redis = nil
	r := loginRouter(true)

	w := postLogin(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRateLimitSetsHeaders(t *testing.T) {
	setupRateLimitRedis(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", APIRateLimit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}
