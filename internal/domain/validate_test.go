package domain

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "   ", expected: ""},
		{name: "bare host", input: "example.com", expected: "https://example.com"},
		{name: "http kept", input: "http://example.com", expected: "http://example.com"},
		{name: "https uppercase kept", input: " HTTPS://Example.com/x ", expected: "HTTPS://Example.com/x"},
		{name: "ftp gets prefixed", input: "ftp://x", expected: "https://ftp://x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		link    Link
		wantMsg string
	}{
		{
			name:    "missing name",
			link:    Link{Group: "g", URL: "https://x.y"},
			wantMsg: "Name is required.",
		},
		{
			name:    "missing name reported before missing group",
			link:    Link{},
			wantMsg: "Name is required.",
		},
		{
			name:    "missing group",
			link:    Link{Name: "n", URL: "https://x.y"},
			wantMsg: "Group is required.",
		},
		{
			name:    "missing url",
			link:    Link{Name: "n", Group: "g"},
			wantMsg: "URL is required.",
		},
		{
			name:    "ftp scheme rejected",
			link:    Link{Name: "n", Group: "g", URL: "ftp://x"},
			wantMsg: "URL must be http/https.",
		},
		{
			name:    "scheme without host rejected",
			link:    Link{Name: "n", Group: "g", URL: "https://"},
			wantMsg: "URL must be http/https.",
		},
		{
			name: "bare domain accepted after normalization",
			link: Link{Name: "n", Group: "g", URL: "example.com"},
		},
		{
			name: "http accepted",
			link: Link{Name: "n", Group: "g", URL: "http://intranet.local:8080/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.link)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("Validate() message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	global := Link{ID: "g", Layer: LayerGlobal}
	own := Link{ID: "a", Layer: LayerPersonal, Owner: "alice"}
	other := Link{ID: "b", Layer: LayerPersonal, Owner: "bob"}

	tests := []struct {
		name    string
		link    Link
		user    string
		isAdmin bool
		want    bool
	}{
		{name: "admin global", link: global, user: "root", isAdmin: true, want: true},
		{name: "admin other personal", link: other, user: "root", isAdmin: true, want: true},
		{name: "user global", link: global, user: "alice", want: false},
		{name: "user own personal", link: own, user: "alice", want: true},
		{name: "user other personal", link: other, user: "alice", want: false},
		{name: "anonymous never matches empty owner", link: Link{Layer: LayerPersonal}, user: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEdit(tt.link, tt.user, tt.isAdmin); got != tt.want {
				t.Errorf("CanEdit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkAdminEdited(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: AdminEditedTag},
		{input: "notes", expected: "notes " + AdminEditedTag},
		{input: "notes " + AdminEditedTag, expected: "notes " + AdminEditedTag},
	}

	for _, tt := range tests {
		got := MarkAdminEdited(tt.input)
		if got != tt.expected {
			t.Errorf("MarkAdminEdited(%q) = %q, want %q", tt.input, got, tt.expected)
		}
		if again := MarkAdminEdited(got); again != got {
			t.Errorf("MarkAdminEdited() not idempotent: %q -> %q", got, again)
		}
	}
}
