package docstore

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newClient(srv *httptest.Server) *Client {
	return &Client{url: srv.URL, httpClient: &http.Client{Timeout: 5 * time.Second}}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		if err := newClient(srv).HealthCheck(t.Context()); err != nil {
			t.Fatalf("HealthCheck: %v", err)
		}
	})

	t.Run("unhealthy_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		if err := newClient(srv).HealthCheck(t.Context()); !errors.Is(err, ErrUnhealthy) {
			t.Fatalf("expected ErrUnhealthy, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(nil)
		srv.Close()

		if err := newClient(srv).HealthCheck(t.Context()); !errors.Is(err, ErrUnhealthy) {
			t.Fatalf("expected ErrUnhealthy, got %v", err)
		}
	})
}

func TestInsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/collections/VisionAnalysis/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if doc["prompt"] != "describe" {
			t.Errorf("unexpected document %v", doc)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
	}))
	defer srv.Close()

	id, err := newClient(srv).Insert(t.Context(), "VisionAnalysis", Document{"prompt": "describe"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != "abc123" {
		t.Fatalf("id = %q", id)
	}
}

func TestInsertRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "after-retry"})
	}))
	defer srv.Close()

	id, err := newClient(srv).Insert(t.Context(), "c", Document{"k": "v"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != "after-retry" {
		t.Fatalf("id = %q", id)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestInsertDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad document", http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := newClient(srv).Insert(t.Context(), "c", Document{"k": "v"}); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestFindOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/collections/Prompt/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Filter Document `json:"filter"`
			Limit  int      `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if req.Limit != 1 {
			t.Errorf("limit = %d, want 1", req.Limit)
		}
		if req.Filter["category"] != "NutritionAnalysis" {
			json.NewEncoder(w).Encode([]Document{})
			return
		}
		json.NewEncoder(w).Encode([]Document{{"_id": "p1", "category": "NutritionAnalysis", "prompt": "analyze"}})
	}))
	defer srv.Close()

	client := newClient(srv)

	doc, err := client.FindOne(t.Context(), "Prompt", Document{"category": "NutritionAnalysis"})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc.ID() != "p1" || doc["prompt"] != "analyze" {
		t.Fatalf("unexpected document %v", doc)
	}

	if _, err := client.FindOne(t.Context(), "Prompt", Document{"category": "Unknown"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindEmptyFilterMatchesAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filter Document `json:"filter"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if req.Filter == nil {
			t.Error("nil filter must serialize as an empty object")
		}
		json.NewEncoder(w).Encode([]Document{{"_id": "1"}, {"_id": "2"}})
	}))
	defer srv.Close()

	docs, err := newClient(srv).Find(t.Context(), "c", nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents", len(docs))
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/collections/c/documents/known":
			json.NewEncoder(w).Encode(Document{"_id": "known", "image": "aGk="})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newClient(srv)

	doc, err := client.Get(t.Context(), "c", "known")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc["image"] != "aGk=" {
		t.Fatalf("unexpected document %v", doc)
	}

	if _, err := client.Get(t.Context(), "c", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:9181/", 0)
	if c.URL() != "http://localhost:9181" {
		t.Fatalf("URL = %q", c.URL())
	}
}
