package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustedProxiesClientIP(t *testing.T) {
	proxies, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.7", " "})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"direct client ignores headers", "203.0.113.9:5000", "1.1.1.1", "2.2.2.2", "203.0.113.9"},
		{"trusted proxy forwards client", "10.1.2.3:443", "198.51.100.4", "", "198.51.100.4"},
		{"spoofed leftmost entry ignored", "10.1.2.3:443", "6.6.6.6, 198.51.100.4", "", "198.51.100.4"},
		{"trusted hops skipped", "192.168.1.7:80", "198.51.100.4, 10.9.9.9", "", "198.51.100.4"},
		{"all hops trusted", "10.1.2.3:443", "10.0.0.5, 10.0.0.6", "", "10.0.0.5"},
		{"real ip fallback", "10.1.2.3:443", "", "198.51.100.8", "198.51.100.8"},
		{"trusted proxy without headers", "10.1.2.3:443", "", "", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/forms/s1/submissions", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, proxies.ClientIP(req))
		})
	}
}

func TestTrustedProxiesNone(t *testing.T) {
	var proxies *TrustedProxies
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "127.0.0.1", proxies.ClientIP(req))
}

func TestNewTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := NewTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = NewTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
