package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/healthz", "/healthz"},
		{"/treasury/fund", "/treasury"},
		{"/proposals", "/proposals"},
		{"/proposals/", "/proposals"},
		{"/proposals/17", "/proposals/:id"},
		{"/proposals/17/vote", "/proposals/:id/vote"},
		{"/proposals/17/details", "/proposals/:id/details"},
	}
	for _, tc := range cases {
		if got := canonicalPath(tc.in); got != tc.want {
			t.Fatalf("canonicalPath(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestInstrumentHandlerServes(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := InstrumentHandler(inner)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/proposals/3/vote", nil))
	if resp.Code != http.StatusTeapot {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	RecordWorkflow("vote", nil)
	RecordWorkflow("vote", http.ErrBodyNotAllowed)

	resp := httptest.NewRecorder()
	Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("empty metrics body")
	}
}
