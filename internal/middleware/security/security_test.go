package security

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fintrack/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func newSecurityRouter(d *Detector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Headers(DefaultHeadersConfig()), d.Middleware())
	r.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestHeaders(t *testing.T) {
	r := newSecurityRouter(NewDetector(quietLogger()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/expenses", nil)
	r.ServeHTTP(w, req)

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS must not be sent over plain http, got %q", got)
	}
}

func TestHeaders_HSTSOverTLS(t *testing.T) {
	r := newSecurityRouter(NewDetector(quietLogger()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/expenses", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestDetector_Inspect(t *testing.T) {
	d := NewDetector(quietLogger())
	tests := []struct {
		name       string
		method     string
		path       string
		query      string
		userAgent  string
		suspicious bool
	}{
		{name: "normal request", method: "GET", path: "/expenses/1", userAgent: "curl/8.0"},
		{name: "path traversal", method: "GET", path: "/../etc/passwd", suspicious: true},
		{name: "dotenv probe", method: "GET", path: "/.env", suspicious: true},
		{name: "sql injection in query", method: "GET", path: "/expenses", query: "q=1 UNION SELECT", suspicious: true},
		{name: "scanner agent", method: "GET", path: "/", userAgent: "sqlmap/1.7", suspicious: true},
		{name: "trace method", method: "TRACE", path: "/", suspicious: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Inspect(tt.method, tt.path, tt.query, tt.userAgent)
			if (got != "") != tt.suspicious {
				t.Errorf("Inspect() = %q, suspicious want %v", got, tt.suspicious)
			}
		})
	}
}

func TestDetector_MiddlewareCounts(t *testing.T) {
	d := NewDetector(quietLogger())
	r := newSecurityRouter(d)

	for _, path := range []string{"/expenses", "/wp-admin/index.php", "/.git/config"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: detector must not block, got %d", path, w.Code)
		}
	}
	if got := d.SuspiciousRequests(); got != 2 {
		t.Errorf("SuspiciousRequests() = %d, want 2", got)
	}
}
