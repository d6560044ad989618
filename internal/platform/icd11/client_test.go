package icd11

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("flatResults"); got != "true" {
			t.Errorf("flatResults = %q, want true", got)
		}
		if got := r.URL.Query().Get("highlighting"); got != "false" {
			t.Errorf("highlighting = %q, want false", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// =========== Search ===========

func TestClient_Search(t *testing.T) {
	srv := newTestBackend(t, http.StatusOK, `{"destinationEntities":[
		{"title":"Dengue fever","theCode":"1C62"},
		{"title":"Fever of other origin","theCode":"MG26"},
		{"title":"Cough","theCode":"CA23"}
	]}`)
	c := NewClient(srv.URL, time.Second, zerolog.Nop())

	entities, err := c.Search(context.Background(), "fever", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2 (topK truncation)", len(entities))
	}
	if entities[0].Title != "Dengue fever" || entities[0].Code != "1C62" {
		t.Errorf("first = %+v", entities[0])
	}
}

func TestClient_Search_UpstreamError(t *testing.T) {
	srv := newTestBackend(t, http.StatusBadGateway, `{}`)
	c := NewClient(srv.URL, time.Second, zerolog.Nop())

	if _, err := c.Search(context.Background(), "fever", 5); err == nil {
		t.Error("Search returned nil error on 502")
	}
}

// =========== SearchContext ===========

func TestClient_SearchContext_FormatsLines(t *testing.T) {
	srv := newTestBackend(t, http.StatusOK, `{"destinationEntities":[
		{"title":"Dengue fever","theCode":"1C62"},
		{"title":"","theCode":""}
	]}`)
	c := NewClient(srv.URL, time.Second, zerolog.Nop())

	got := c.SearchContext(context.Background(), "fever", 5)
	want := "- Dengue fever → Code: 1C62\n- N/A → Code: N/A"
	if got != want {
		t.Errorf("SearchContext = %q, want %q", got, want)
	}
}

func TestClient_SearchContext_NoMatches(t *testing.T) {
	srv := newTestBackend(t, http.StatusOK, `{"destinationEntities":[]}`)
	c := NewClient(srv.URL, time.Second, zerolog.Nop())

	if got := c.SearchContext(context.Background(), "zzz", 5); got != NoMatches {
		t.Errorf("SearchContext = %q, want %q", got, NoMatches)
	}
}

func TestClient_SearchContext_UpstreamFailureIsSentinel(t *testing.T) {
	srv := newTestBackend(t, http.StatusInternalServerError, `{}`)
	c := NewClient(srv.URL, time.Second, zerolog.Nop())

	if got := c.SearchContext(context.Background(), "fever", 5); got != SearchError {
		t.Errorf("SearchContext = %q, want %q", got, SearchError)
	}
}

func TestClient_SearchContext_UnreachableHost(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zerolog.Nop())

	if got := c.SearchContext(context.Background(), "fever", 5); got != SearchError {
		t.Errorf("SearchContext = %q, want %q", got, SearchError)
	}
}
