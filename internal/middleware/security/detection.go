package security

import (
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"fintrack/internal/log"
)

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

// TrustedProxies are the networks whose forwarding headers gin may honour
// when resolving the client IP.
var TrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// Detector flags requests that look like probes. It only observes; the
// request is still served.
type Detector struct {
	suspicious int64
	logger     *log.Logger
}

// NewDetector creates a new security detector
func NewDetector(logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{logger: logger.WithComponent(log.ComponentSecurity)}
}

// Inspect returns the reason a request looks suspicious, or "".
func (d *Detector) Inspect(method, path, rawQuery, userAgent string) string {
	lowerPath := strings.ToLower(path)
	lowerQuery := strings.ToLower(rawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(lowerPath, p) {
			return "path pattern " + p
		}
		if strings.Contains(lowerQuery, p) {
			return "query pattern " + p
		}
	}

	ua := strings.ToLower(userAgent)
	for _, a := range suspiciousAgents {
		if strings.Contains(ua, a) {
			return "user agent " + a
		}
	}

	for _, m := range unusualMethods {
		if method == m {
			return "method " + m
		}
	}

	if len(path)+len(rawQuery) > 2048 {
		return "oversized url"
	}
	return ""
}

// Middleware logs suspicious requests and counts them.
func (d *Detector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request
		if reason := d.Inspect(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()); reason != "" {
			atomic.AddInt64(&d.suspicious, 1)
			d.logger.WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, c.ClientIP())
		}
		c.Next()
	}
}

// SuspiciousRequests returns the number of flagged requests so far.
func (d *Detector) SuspiciousRequests() int64 {
	return atomic.LoadInt64(&d.suspicious)
}
