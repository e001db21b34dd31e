package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/smsdesk/internal/core"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct client", nil, "203.0.113.9:5555", nil, "203.0.113.9"},
		{"untrusted forwarder ignored", nil, "203.0.113.9:5555", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.9"},
		{"trusted proxy xff", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.1.2.3"}, "198.51.100.7"},
		{"trusted proxy real ip wins", []string{"10.0.0.1"}, "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.8", "X-Forwarded-For": "198.51.100.7"}, "198.51.100.8"},
		{"trusted proxy bad header", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Forwarded-For": "unknown"}, "10.1.2.3"},
		{"mapped ipv4", []string{"127.0.0.1"}, "[::ffff:127.0.0.1]:80", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"ipv6 client", nil, "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"invalid trusted entry skipped", []string{"not-a-cidr"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "198.51.100.8"}, "10.1.2.3"},
		{"unparsable remote addr", nil, "pipe", nil, "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = core.IPAddressFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			ClientIP(tt.trusted)(next).ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}
