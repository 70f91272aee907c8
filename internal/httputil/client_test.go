package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://example.com/menu", false},
		{"plain http intranet", "http://dashboard.local:8080", false},
		{"file scheme", "file:///videos/loop.mp4", true},
		{"no host", "https://", true},
		{"garbage", "://nope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestGetSendsBrowserHeaders(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), NewClient(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	if ua == "" {
		t.Error("Get should send a browser-like User-Agent")
	}
}

func TestGetRejectsInvalidURL(t *testing.T) {
	if _, err := Get(context.Background(), NewClient(), "file:///etc/passwd"); err == nil {
		t.Error("Get should reject non-http URLs")
	}
}
