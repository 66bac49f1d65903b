package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestCORSAllowlist(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:3000"}))

	cases := []struct {
		name   string
		origin string
		want   string
	}{
		{"列入白名单", "http://localhost:3000", "http://localhost:3000"},
		{"未列入白名单", "http://evil.example", ""},
		{"无Origin", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCORSWildcardAndPreflight(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	// 通配模式不携带Credentials
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard origin must not allow credentials")
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Error("preflight result should be cacheable")
	}
}

func TestSecureHeaders(t *testing.T) {
	r := newRouter(Secure())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(RateLimiter(2, time.Minute))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests: %v", statuses[:2])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", statuses[2])
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	// 非法配置退回默认值而不是panic
	r := newRouter(RateLimiter(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
