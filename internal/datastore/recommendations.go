package datastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/recommend"
)

// RecommendationsTable holds one row per emitted recommendation.
const RecommendationsTable = "recommendations"

const recommendationsSchema = `CREATE TABLE IF NOT EXISTS recommendations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	requested_at TEXT NOT NULL,
	selected_id TEXT NOT NULL,
	selected_type TEXT NOT NULL,
	selected_title TEXT,
	position INTEGER NOT NULL,
	item_id TEXT NOT NULL,
	item_type TEXT NOT NULL,
	item_title TEXT,
	item_creator TEXT,
	item_year TEXT,
	item_genres TEXT,
	relationship_type TEXT
)`

var _ recommend.Recorder = (*RecommendationLog)(nil)

// RecommendationLog writes recommendation responses to a Store.
type RecommendationLog struct {
	store Store
	now   func() time.Time
}

// NewRecommendationLog connects store and makes sure the table exists.
func NewRecommendationLog(ctx context.Context, store Store) (*RecommendationLog, error) {
	if err := store.Connect(); err != nil {
		return nil, err
	}
	if err := store.CreateTable(ctx, recommendationsSchema); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &RecommendationLog{store: store, now: time.Now}, nil
}

// RecordRecommendations stores one row per recommendation.
func (l *RecommendationLog) RecordRecommendations(ctx context.Context, selected media.Item, recs []recommend.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	requestedAt := l.now().UTC().Format(time.RFC3339)
	records := make([]map[string]any, 0, len(recs))
	for i, rec := range recs {
		records = append(records, map[string]any{
			"requested_at":      requestedAt,
			"selected_id":       selected.ID,
			"selected_type":     string(selected.Type),
			"selected_title":    selected.Title,
			"position":          i + 1,
			"item_id":           rec.Item.ID,
			"item_type":         string(rec.Item.Type),
			"item_title":        rec.Item.Title,
			"item_creator":      rec.Item.Creator,
			"item_year":         rec.Item.Year,
			"item_genres":       strings.Join(rec.Item.Genres, ", "),
			"relationship_type": rec.RelationshipType,
		})
	}

	if err := l.store.BatchInsert(ctx, RecommendationsTable, records); err != nil {
		return fmt.Errorf("record recommendations for %s: %w", selected.ID, err)
	}
	return nil
}

// Close closes the underlying store.
func (l *RecommendationLog) Close() error {
	return l.store.Close()
}
