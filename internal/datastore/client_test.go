package datastore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/recommend"
)

func TestDatasetteClient_BatchInsert_Success(t *testing.T) {
	var payload struct {
		Rows []map[string]any `json:"rows"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/-/insert/bookreel/test_table" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer testtoken" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewDatasetteClient(ts.URL, "bookreel", "testtoken")
	if err := client.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	records := []map[string]any{{"foo": "bar"}}
	if err := client.BatchInsert(context.Background(), "test_table", records); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(payload.Rows) != 1 || payload.Rows[0]["foo"] != "bar" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestDatasetteClient_BatchInsert_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		if err := json.NewEncoder(w).Encode(map[string]any{"error": "forbidden"}); err != nil {
			t.Errorf("Failed to encode error response: %v", err)
		}
	}))
	defer ts.Close()

	client := NewDatasetteClient(ts.URL, "bookreel", "testtoken")
	if err := client.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	records := []map[string]any{{"foo": "bar"}}
	if err := client.BatchInsert(context.Background(), "test_table", records); err == nil {
		t.Errorf("expected error, got nil")
	}
}

func TestDatasetteClient_ConnectRejectsRelativeURL(t *testing.T) {
	client := NewDatasetteClient("not a url", "bookreel", "")
	if err := client.Connect(); err == nil {
		t.Errorf("expected error for relative URL")
	}
}

func TestRecommendationLog_Remote(t *testing.T) {
	var rows int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		rows += len(payload.Rows)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	log, err := NewRecommendationLog(context.Background(), NewDatasetteClient(ts.URL, "bookreel", ""))
	if err != nil {
		t.Fatalf("NewRecommendationLog: %v", err)
	}

	recs := []recommend.Recommendation{{Item: media.Item{ID: "movie-1", Type: media.Movie}, RelationshipType: "Similar movie"}}
	if err := log.RecordRecommendations(context.Background(), media.Item{ID: "movie-2", Type: media.Movie}, recs); err != nil {
		t.Fatalf("RecordRecommendations: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row posted, got %d", rows)
	}
}
