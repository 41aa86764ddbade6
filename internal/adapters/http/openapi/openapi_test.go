package openapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadDocument(t *testing.T) {
	doc, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, path := range []string{"/v1/search", "/v1/search/export", "/v1/search/popular", "/v1/facets", "/v1/syntax", "/v1/corpus/reload"} {
		if doc.Paths.Find(path) == nil {
			t.Fatalf("expected path %s in document", path)
		}
	}
}

func TestValidatorRequests(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		method  string
		target  string
		wantErr bool
	}{
		{name: "plain search", method: http.MethodGet, target: "/v1/search?q=ai+agents", wantErr: false},
		{name: "sort and limit", method: http.MethodGet, target: "/v1/search?q=ai&sort=date&limit=5", wantErr: false},
		{name: "unknown sort", method: http.MethodGet, target: "/v1/search?sort=popularity", wantErr: true},
		{name: "negative limit", method: http.MethodGet, target: "/v1/search?limit=-1", wantErr: true},
		{name: "non numeric limit", method: http.MethodGet, target: "/v1/search?limit=ten", wantErr: true},
		{name: "popular limit too large", method: http.MethodGet, target: "/v1/search/popular?limit=500", wantErr: true},
		{name: "reload", method: http.MethodPost, target: "/v1/corpus/reload", wantErr: false},
	}
	for _, tt := range tests {
		err := v.Validate(httptest.NewRequest(tt.method, tt.target, nil))
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestValidatorRouteErrors(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(httptest.NewRequest(http.MethodGet, "/healthz", nil)); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
	if err := v.Validate(httptest.NewRequest(http.MethodDelete, "/v1/search", nil)); !errors.Is(err, ErrMethodNotAllowed) {
		t.Fatalf("expected ErrMethodNotAllowed, got %v", err)
	}
}
