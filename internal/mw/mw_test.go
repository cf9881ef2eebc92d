package mw

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"energy-admin/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCache(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/dashboard", Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for i, want := range []string{"MISS", "HIT", "HIT"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/dashboard", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, want, w.Header().Get("X-Cache"), "request %d", i)
		assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	}
	assert.Equal(t, 1, calls)
}

func TestCache_SkipsErrors(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/x", Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls++
		c.Status(http.StatusInternalServerError)
	})
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		r.ServeHTTP(w, req)
	}
	assert.Equal(t, 2, calls)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewIPRateLimiter(rate.Limit(1), 2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients have their own bucket")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

type fakeParser map[string]*auth.Claims

func (f fakeParser) Parse(token string) (*auth.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid or expired token")
}

func TestJWTAuth(t *testing.T) {
	parser := fakeParser{"good": {Email: "op@plant.io", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}}
	r := gin.New()
	r.GET("/", JWTAuth(parser), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(KeyUserID)+"|"+c.GetString(KeyEmail))
	})

	testCases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "Valid", header: "Bearer good", code: http.StatusOK, body: "u1|op@plant.io"},
		{name: "Lowercase scheme", header: "bearer good", code: http.StatusOK, body: "u1|op@plant.io"},
		{name: "Missing", header: "", code: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic good", code: http.StatusUnauthorized},
		{name: "Bad token", header: "Bearer bad", code: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}
