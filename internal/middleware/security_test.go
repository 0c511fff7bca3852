package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newTestEngine(RateLimitMiddleware(NewRateLimiter(1, 2)))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests = %v, want first two 200", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}

	// A different client has its own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		allowed    []string
		origin     string
		wantHeader string
	}{
		{"GivenNoAllowList_WhenOriginSent_ThenReflected", nil, "http://dash.local:3000", "http://dash.local:3000"},
		{"GivenAllowList_WhenOriginListed_ThenReflected", []string{"http://a.example"}, "http://a.example/", "http://a.example"},
		{"GivenAllowList_WhenOriginUnlisted_ThenNoHeader", []string{"http://a.example"}, "http://evil.example", ""},
		{"GivenBareHost_WhenHostMatches_ThenReflected", []string{"a.example"}, "https://a.example", "https://a.example"},
		{"GivenWildcard_WhenAnyOrigin_ThenReflected", []string{"*"}, "http://x.example", "http://x.example"},
		{"GivenNoOrigin_WhenRequested_ThenNoHeader", nil, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(CORSMiddleware(tc.allowed))
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tc.wantHeader)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestEngine(CORSMiddleware(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://dash.local")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "GET") {
		t.Errorf("Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := newTestEngine(SecurityHeadersMiddleware())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestValidateScanPath(t *testing.T) {
	pv := NewPathValidator()
	testCases := []struct {
		path string
		want bool
	}{
		{"", true},
		{"/data/media", true},
		{"relative/dir", true},
		{"/data\x00/etc", false},
		{"/" + strings.Repeat("a", 5000), false},
	}

	for _, tc := range testCases {
		if got := pv.ValidateScanPath(tc.path); got != tc.want {
			t.Errorf("ValidateScanPath(%.20q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestOriginAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"GivenEmptyList_WhenChecked_ThenAllowed", "http://any.example", nil, true},
		{"GivenTrailingSlash_WhenListed_ThenAllowed", "http://a.example/", []string{"http://a.example"}, true},
		{"GivenOtherScheme_WhenFullOriginListed_ThenRejected", "https://a.example", []string{"http://a.example"}, false},
		{"GivenBlankEntries_WhenNothingMatches_ThenRejected", "http://a.example", []string{" ", ""}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OriginAllowed(tc.origin, tc.allowed); got != tc.want {
				t.Errorf("OriginAllowed(%q, %v) = %v, want %v", tc.origin, tc.allowed, got, tc.want)
			}
		})
	}
}
