package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/recommend"
)

func TestSQLiteStore_CreateTableAndInsert(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Connect(); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	schema := `CREATE TABLE IF NOT EXISTS test_table (
		id INTEGER PRIMARY KEY,
		name TEXT,
		value INTEGER
	)`
	if err := store.CreateTable(ctx, schema); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	records := []map[string]any{
		{"id": 1, "name": "foo", "value": 42},
		{"id": 2, "name": "bar", "value": 99},
	}
	if err := store.BatchInsert(ctx, "test_table", records); err != nil {
		t.Fatalf("failed to batch insert: %v", err)
	}

	var count, total int
	if err := store.db.QueryRow("SELECT COUNT(*), SUM(value) FROM test_table").Scan(&count, &total); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if count != 2 || total != 141 {
		t.Errorf("expected 2 rows summing to 141, got %d rows summing to %d", count, total)
	}
}

func TestSQLiteStore_NotConnected(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "unused.db"))

	if err := store.CreateTable(context.Background(), "CREATE TABLE x (id INTEGER)"); err == nil {
		t.Errorf("expected error before Connect")
	}
	if err := store.BatchInsert(context.Background(), "x", []map[string]any{{"id": 1}}); err == nil {
		t.Errorf("expected error before Connect")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close on unconnected store: %v", err)
	}
}

func TestRecommendationLog_Records(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "bookreel.db"))
	ctx := context.Background()

	log, err := NewRecommendationLog(ctx, store)
	if err != nil {
		t.Fatalf("NewRecommendationLog: %v", err)
	}
	defer func() { _ = log.Close() }()
	log.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	selected := media.Item{ID: "book-works-OL893415W", Type: media.Book, Title: "Dune"}
	recs := []recommend.Recommendation{
		{Item: media.Item{ID: "movie-329865", Type: media.Movie, Title: "Arrival", Genres: []string{"science fiction", "drama"}}, RelationshipType: "Curated cross-media pick"},
		{Item: media.Item{ID: "book-works-OL2W", Type: media.Book, Title: "Dune Messiah"}, RelationshipType: "By the same author: Frank Herbert"},
	}
	if err := log.RecordRecommendations(ctx, selected, recs); err != nil {
		t.Fatalf("RecordRecommendations: %v", err)
	}
	if err := log.RecordRecommendations(ctx, selected, nil); err != nil {
		t.Fatalf("empty RecordRecommendations: %v", err)
	}

	rows, err := store.db.Query(`SELECT position, item_id, item_genres, relationship_type, requested_at
		FROM recommendations WHERE selected_id = ? ORDER BY position`, selected.ID)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	defer func() { _ = rows.Close() }()

	type row struct {
		position     int
		itemID       string
		genres       string
		relationship string
		stamp        string
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.position, &r.itemID, &r.genres, &r.relationship, &r.stamp); err != nil {
			t.Fatalf("failed to scan: %v", err)
		}
		got = append(got, r)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].itemID != "movie-329865" || got[0].position != 1 || got[0].genres != "science fiction, drama" {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[1].relationship != "By the same author: Frank Herbert" {
		t.Errorf("unexpected relationship: %q", got[1].relationship)
	}
	if got[0].stamp != "2025-03-01T10:00:00Z" {
		t.Errorf("unexpected timestamp: %q", got[0].stamp)
	}
}
