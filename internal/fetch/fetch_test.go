package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCachesAndRevalidates(t *testing.T) {
	const body = "BEGIN:VCALENDAR\nEND:VCALENDAR\n"
	const etag = `"v1"`

	var requests int
	var conditional string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == etag {
			conditional = r.Header.Get("If-None-Match")
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())

	first, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.FromCache {
		t.Fatal("first fetch should not come from cache")
	}
	if string(first.Body) != body {
		t.Fatalf("unexpected body %q", first.Body)
	}

	second, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second fetch should reuse the cached body")
	}
	if string(second.Body) != body {
		t.Fatalf("cached body mismatch: %q", second.Body)
	}
	if conditional != etag {
		t.Fatalf("second request did not revalidate with If-None-Match, got %q", conditional)
	}
	if requests != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
}

func TestFetchFallsBackToCacheOnServerError(t *testing.T) {
	const body = "BEGIN:VCALENDAR\nEND:VCALENDAR\n"

	var fail bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())

	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	fail = true
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fallback fetch: %v", err)
	}
	if !res.FromCache || string(res.Body) != body {
		t.Fatalf("expected cached fallback body, got fromCache=%v body=%q", res.FromCache, res.Body)
	}
}

func TestFetchErrorsWithoutURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty URL")
	}
}

func TestRedactURLHidesToken(t *testing.T) {
	got := redactURL("https://portal.example.com/export/abc123token/cal.ics")
	want := "https://portal.example.com/...(redacted)"
	if got != want {
		t.Fatalf("redactURL = %q, want %q", got, want)
	}
	if got := redactURL("no scheme here"); got != "...(redacted)" {
		t.Fatalf("unexpected fallback redaction %q", got)
	}
}
