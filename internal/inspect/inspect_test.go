package inspect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/httputil"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeExtractsTitle(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head><title> Departures Board </title></head><body></body></html>`)

	report, err := Probe(context.Background(), httputil.NewClient(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if report.Title != "Departures Board" {
		t.Errorf("title = %q, want trimmed 'Departures Board'", report.Title)
	}
	if report.MetaRefresh {
		t.Error("no meta refresh in this page")
	}
}

func TestProbeDetectsMetaRefresh(t *testing.T) {
	srv := serve(t, http.StatusOK,
		`<html><head><meta http-equiv="Refresh" content="30; url=/board"><title>x</title></head></html>`)

	report, err := Probe(context.Background(), httputil.NewClient(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if !report.MetaRefresh {
		t.Fatal("meta refresh not detected")
	}
	if report.RefreshEvery != 30 {
		t.Errorf("RefreshEvery = %d, want 30", report.RefreshEvery)
	}
}

func TestProbeReportsBadStatus(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "gone")

	report, err := Probe(context.Background(), httputil.NewClient(), srv.URL)
	if err == nil {
		t.Fatal("Probe should report non-200 status as an error")
	}
	if report == nil || report.Status != http.StatusNotFound {
		t.Errorf("report = %+v, want status 404 preserved", report)
	}
}

func TestParseRefreshSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"30", 30},
		{"5; url=/next", 5},
		{" 10 ;url=x", 10},
		{"never", 0},
	}
	for _, tt := range tests {
		if got := parseRefreshSeconds(tt.in); got != tt.want {
			t.Errorf("parseRefreshSeconds(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
