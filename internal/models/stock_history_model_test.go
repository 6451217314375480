package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortHistoryNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*StockHistoryEntry{
		{ID: "b", Timestamp: base.Add(1 * time.Minute)},
		{ID: "d", Timestamp: base.Add(3 * time.Minute)},
		{ID: "a", Timestamp: base},
		{ID: "c", Timestamp: base.Add(2 * time.Minute)},
	}

	SortHistoryNewestFirst(entries)

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.ID)
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, got)
}

func TestSortHistoryNewestFirstStableOnTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*StockHistoryEntry{
		{ID: "first", Timestamp: ts},
		{ID: "second", Timestamp: ts},
		{ID: "third", Timestamp: ts},
	}

	SortHistoryNewestFirst(entries)
	SortHistoryNewestFirst(entries)

	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "second", entries[1].ID)
	assert.Equal(t, "third", entries[2].ID)
}

func TestSortHistoryNewestFirstEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		SortHistoryNewestFirst(nil)
		SortHistoryNewestFirst([]*StockHistoryEntry{})
	})
}
