package models

import "time"

// ProductGroup represents a product category. Documents use auto-generated IDs.
type ProductGroup struct {
	ID          string    `json:"id" firestore:"-"` // Document ID, auto-generated
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// Product represents a stocked item belonging to a ProductGroup.
// Stock, Cartons and LastUpdated are mutated exclusively through the
// transactional stock update; everything else is last-writer-wins metadata.
type Product struct {
	ID          string    `json:"id" firestore:"-"` // Document ID, auto-generated
	GroupID     string    `json:"groupId" firestore:"groupId"`
	Name        string    `json:"name" firestore:"name"`
	MRP         float64   `json:"mrp" firestore:"mrp"` // maximum retail price
	Unit        string    `json:"unit,omitempty" firestore:"unit,omitempty"`
	Stock       int64     `json:"stock" firestore:"stock"`
	Cartons     int64     `json:"cartons" firestore:"cartons"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	ImageURI    string    `json:"imageUri,omitempty" firestore:"imageUri,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated" firestore:"lastUpdated"`
}
