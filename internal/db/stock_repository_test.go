package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stocktrail-backend-go/internal/models"
)

// scriptedHistoryStream plays back canned snapshots and then fails with a
// fixed error, standing in for the Firestore snapshot iterator.
type scriptedHistoryStream struct {
	batches [][]*models.StockHistoryEntry
	final   error
	stopped bool
}

func (s *scriptedHistoryStream) next() ([]*models.StockHistoryEntry, error) {
	if len(s.batches) == 0 {
		return nil, s.final
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func (s *scriptedHistoryStream) stop() { s.stopped = true }

func historyEntries(ts time.Time, ids ...string) []*models.StockHistoryEntry {
	entries := make([]*models.StockHistoryEntry, 0, len(ids))
	for i, id := range ids {
		entries = append(entries, &models.StockHistoryEntry{
			ID:        id,
			ProductID: "p1",
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
		})
	}
	return entries
}

func collectWatch(t *testing.T, repo *firestoreStockRepository) [][]*models.StockHistoryEntry {
	t.Helper()
	delivered := make(chan []*models.StockHistoryEntry, 8)
	sub, err := repo.WatchHistoryByProduct(context.Background(), "p1", func(entries []*models.StockHistoryEntry) {
		delivered <- entries
	})
	require.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not terminate")
	}
	close(delivered)

	var got [][]*models.StockHistoryEntry
	for batch := range delivered {
		got = append(got, batch)
	}
	return got
}

// When the store rejects the sorted stream for lack of its composite index,
// the watch must restart on the unordered stream, sort each snapshot before
// delivery, and warn exactly once.
func TestWatchHistoryFallsBackToClientSideSort(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	core, logs := observer.New(zap.WarnLevel)

	// Unordered store order: oldest first.
	unordered := &scriptedHistoryStream{
		batches: [][]*models.StockHistoryEntry{historyEntries(base, "oldest", "middle", "newest")},
		final:   context.Canceled,
	}
	rejected := &scriptedHistoryStream{
		final: status.Error(codes.FailedPrecondition, "The query requires an index."),
	}

	repo := &firestoreStockRepository{logger: zap.New(core)}
	var orderedRequests []bool
	repo.openHistory = func(_ context.Context, _ string, ordered bool) historyStream {
		orderedRequests = append(orderedRequests, ordered)
		if ordered {
			return rejected
		}
		return unordered
	}

	got := collectWatch(t, repo)

	assert.Equal(t, []bool{true, false}, orderedRequests,
		"ordered stream is tried first, then the unordered fallback")
	require.Len(t, got, 1)
	ids := []string{got[0][0].ID, got[0][1].ID, got[0][2].ID}
	assert.Equal(t, []string{"newest", "middle", "oldest"}, ids,
		"fallback snapshots arrive sorted newest first")
	assert.True(t, rejected.stopped)
	assert.True(t, unordered.stopped)
	assert.Equal(t, 1, logs.FilterMessageSnippet("missing its composite index").Len())

	// A second watch on the same repository degrades silently.
	unordered2 := &scriptedHistoryStream{final: context.Canceled}
	rejected2 := &scriptedHistoryStream{
		final: status.Error(codes.FailedPrecondition, "The query requires an index."),
	}
	repo.openHistory = func(_ context.Context, _ string, ordered bool) historyStream {
		if ordered {
			return rejected2
		}
		return unordered2
	}
	collectWatch(t, repo)
	assert.Equal(t, 1, logs.FilterMessageSnippet("missing its composite index").Len(),
		"the index warning is logged once per process")
}

// A healthy sorted stream is passed through untouched, with no fallback open
// and no warning.
func TestWatchHistoryOrderedStreamPassesThrough(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	core, logs := observer.New(zap.WarnLevel)

	// Store-sorted order: newest first, delivered verbatim.
	sorted := []*models.StockHistoryEntry{
		{ID: "newest", ProductID: "p1", Timestamp: base.Add(2 * time.Minute)},
		{ID: "middle", ProductID: "p1", Timestamp: base.Add(time.Minute)},
		{ID: "oldest", ProductID: "p1", Timestamp: base},
	}
	ordered := &scriptedHistoryStream{
		batches: [][]*models.StockHistoryEntry{sorted},
		final:   context.Canceled,
	}

	repo := &firestoreStockRepository{logger: zap.New(core)}
	var opens int
	repo.openHistory = func(_ context.Context, _ string, isOrdered bool) historyStream {
		opens++
		require.True(t, isOrdered)
		return ordered
	}

	got := collectWatch(t, repo)

	assert.Equal(t, 1, opens, "no fallback stream is opened")
	require.Len(t, got, 1)
	assert.Same(t, sorted[0], got[0][0])
	assert.Equal(t, 0, logs.Len())
}

// A terminal stream error that is neither cancellation nor a missing index
// ends the subscription instead of looping or falling back.
func TestWatchHistoryTerminalErrorClosesSubscription(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	failed := &scriptedHistoryStream{final: status.Error(codes.Unavailable, "store unreachable")}
	repo := &firestoreStockRepository{logger: zap.New(core)}
	var opens int
	repo.openHistory = func(context.Context, string, bool) historyStream {
		opens++
		return failed
	}

	got := collectWatch(t, repo)

	assert.Empty(t, got)
	assert.Equal(t, 1, opens, "an unavailable store does not trigger the index fallback")
	assert.Equal(t, 1, logs.FilterMessageSnippet("subscription terminated").Len())
}
