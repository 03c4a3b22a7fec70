package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "10.0.0.5:4242", want: "10.0.0.5"},
		{name: "ipv6 remote", remote: "[::1]:4242", want: "::1"},
		{
			name:    "proxy headers ignored when untrusted",
			remote:  "10.0.0.5:4242",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:    "10.0.0.5",
		},
		{
			name:       "cloudflare header wins",
			remote:     "127.0.0.1:1",
			headers:    map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "1.2.3.4"},
			trustProxy: true,
			want:       "9.9.9.9",
		},
		{
			name:       "left-most forwarded for",
			remote:     "127.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"},
			trustProxy: true,
			want:       "1.2.3.4",
		},
		{
			name:       "real ip fallback",
			remote:     "127.0.0.1:1",
			headers:    map[string]string{"X-Real-IP": "8.8.8.8"},
			trustProxy: true,
			want:       "8.8.8.8",
		},
		{name: "no headers", remote: "127.0.0.1:1", trustProxy: true, want: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.10 ", "", "garbage", "fd00::/8"})
	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true, want false")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.1.10", true},
		{"192.168.1.11", false},
		{"::ffff:10.0.0.1", true},
		{"fd12::1", true},
		{"2001:db8::1", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("NewIPMatcher(nil).IsEmpty() = false, want true")
	}
}
