package identity

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderResolver(t *testing.T) {
	res := HeaderResolver{UserHeader: "X-Remote-User", AdminHeader: "X-Remote-Admin"}

	tests := []struct {
		name    string
		user    string
		admin   string
		want    Identity
		wantErr error
	}{
		{name: "user", user: "alice", want: Identity{Username: "alice"}},
		{name: "admin", user: "root", admin: "true", want: Identity{Username: "root", Admin: true}},
		{name: "garbage admin flag", user: "bob", admin: "maybe", want: Identity{Username: "bob"}},
		{name: "missing user", admin: "1", wantErr: ErrNoIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/links", nil)
			if tt.user != "" {
				req.Header.Set("X-Remote-User", tt.user)
			}
			if tt.admin != "" {
				req.Header.Set("X-Remote-Admin", tt.admin)
			}
			got, err := res.Resolve(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTResolverRoundTrip(t *testing.T) {
	res := NewJWTResolver("test-secret")
	token, err := res.Issue("bob", true, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/links", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	got, err := res.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "bob", Admin: true}, got)
}

func TestJWTResolverRejects(t *testing.T) {
	res := NewJWTResolver("test-secret")
	other := NewJWTResolver("other-secret")

	wrongKey, err := other.Issue("bob", true, time.Hour)
	require.NoError(t, err)
	expired, err := res.Issue("bob", false, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "no header", header: "", wantErr: ErrNoIdentity},
		{name: "basic auth", header: "Basic Ym9iOng=", wantErr: ErrNoIdentity},
		{name: "wrong key", header: "Bearer " + wrongKey, wantErr: ErrInvalidToken},
		{name: "expired", header: "Bearer " + expired, wantErr: ErrInvalidToken},
		{name: "garbage", header: "Bearer abc.def.ghi", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/links", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := res.Resolve(req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
