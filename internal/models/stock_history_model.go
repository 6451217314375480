package models

import (
	"sort"
	"time"
)

// StockHistoryEntry is the immutable audit record written together with every
// stock mutation. ProductName is a denormalized snapshot taken at write time so
// the trail stays readable after a product is deleted.
type StockHistoryEntry struct {
	ID              string    `json:"id" firestore:"-"` // Document ID, auto-generated
	ProductID       string    `json:"productId" firestore:"productId"`
	ProductName     string    `json:"productName" firestore:"productName"`
	PreviousStock   int64     `json:"previousStock" firestore:"previousStock"`
	NewStock        int64     `json:"newStock" firestore:"newStock"`
	PreviousCartons int64     `json:"previousCartons" firestore:"previousCartons"`
	NewCartons      int64     `json:"newCartons" firestore:"newCartons"`
	ChangeAmount    int64     `json:"changeAmount" firestore:"changeAmount"` // NewStock - PreviousStock
	UserID          string    `json:"userId" firestore:"userId"`
	ChangeReason    string    `json:"changeReason,omitempty" firestore:"changeReason,omitempty"`
	Timestamp       time.Time `json:"timestamp" firestore:"timestamp"`
}

// SortHistoryNewestFirst orders entries by descending timestamp in place.
// Entries sharing a timestamp keep a stable relative order so repeated sorts
// of the same snapshot are deterministic.
func SortHistoryNewestFirst(entries []*StockHistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
