package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kerem-kaynak/wordfreq/pkg/ingest"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/books", func(w http.ResponseWriter, r *http.Request) {
		next := srv.URL + "/books/2"
		_ = json.NewEncoder(w).Encode(Page{
			Count: 3,
			Next:  &next,
			Results: []Book{
				{ID: 1, Title: "Frankenstein", Formats: map[string]string{TextFormat: srv.URL + "/1.txt"}},
				{ID: 2, Title: "Only HTML", Formats: map[string]string{"text/html": srv.URL + "/2.html"}},
			},
		})
	})
	mux.HandleFunc("/books/2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Page{
			Count: 3,
			Results: []Book{
				{ID: 3, Title: "Moby Dick", Formats: map[string]string{TextFormat: srv.URL + "/3.txt"}},
			},
		})
	})
	mux.HandleFunc("/1.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "It was a dreary night of November.")
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBook_TextURL(t *testing.T) {
	tests := []struct {
		formats map[string]string
		url     string
		ok      bool
	}{
		{map[string]string{TextFormat: "https://example.org/84.txt"}, "https://example.org/84.txt", true},
		{map[string]string{TextFormat: "https://example.org/84.zip"}, "", false},
		{map[string]string{"text/plain": "https://example.org/84.txt"}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		url, ok := Book{Formats: tt.formats}.TextURL()
		if url != tt.url || ok != tt.ok {
			t.Errorf("TextURL(%v) = %q, %v, want %q, %v", tt.formats, url, ok, tt.url, tt.ok)
		}
	}
}

func TestClient_Documents(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL+"/books", WithRetry(time.Millisecond, 0))

	var titles []string
	err := c.Documents(context.Background(), func(doc ingest.Document) error {
		titles = append(titles, doc.Title)
		return nil
	})
	if err != nil {
		t.Fatalf("Documents error: %v", err)
	}

	want := []string{"Frankenstein", "Moby Dick"}
	if fmt.Sprint(titles) != fmt.Sprint(want) {
		t.Errorf("Documents = %v, want %v", titles, want)
	}
}

func TestClient_DocumentsStopsOnCallbackError(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL+"/books", WithRetry(time.Millisecond, 0))

	stop := errors.New("stop")
	calls := 0
	err := c.Documents(context.Background(), func(ingest.Document) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Documents error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}

func TestClient_Open(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL+"/books", WithRetry(time.Millisecond, 0))

	body, err := c.Open(context.Background(), ingest.Document{URL: srv.URL + "/1.txt"})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(data) != "It was a dreary night of November." {
		t.Errorf("body = %q", data)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "finally")
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(time.Millisecond, 5))
	body, err := c.Open(context.Background(), ingest.Document{URL: srv.URL + "/book.txt"})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	body.Close()

	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestClient_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(time.Millisecond, 5))
	_, err := c.Open(context.Background(), ingest.Document{URL: srv.URL + "/missing.txt"})
	if !errors.Is(err, ErrStatus) {
		t.Errorf("Open error = %v, want ErrStatus", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(time.Millisecond, 2))
	err := c.Documents(context.Background(), func(ingest.Document) error { return nil })
	if !errors.Is(err, ErrStatus) {
		t.Errorf("Documents error = %v, want ErrStatus", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(time.Millisecond, 0))
	if err := c.Documents(context.Background(), func(ingest.Document) error { return nil }); err == nil {
		t.Error("expected decode error")
	}
}
