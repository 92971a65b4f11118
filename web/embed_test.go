package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDashboard_Has(t *testing.T) {
	d, err := NewDashboard()
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"index.html", true},
		{"/app.js", true},
		{"style.css", true},
		{"missing.css", false},
		{"/", false},
		{"../go.mod", false},
	}

	for _, tt := range tests {
		if got := d.Has(tt.name); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDashboard_FallsBackToIndex(t *testing.T) {
	d, err := NewDashboard()
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	for _, target := range []string{"/", "/live", "/tabs/spec"} {
		rr := httptest.NewRecorder()
		d.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "<html") {
			t.Errorf("GET %s: expected the dashboard page", target)
		}
	}
}
