// Package entity defines the domain models for the products feature.
package entity

import "time"

// Product represents a tracked product on an external web page.
type Product struct {
	ID             uint
	Name           string
	URL            string    // Page the product is tracked on, unique per product
	CurrentPrice   float64   // Last known price, lowered only when a drop is observed
	Currency       string    // 3-letter code (e.g. "USD")
	RecipientEmail string    // Address alerted when the price drops
	AddedAt        time.Time // Set once at onboarding
}

// PriceHistoryEntry is one observed price for one product at one point in time.
// Entries are append-only: one at onboarding, one per detected drop.
type PriceHistoryEntry struct {
	ID        uint
	ProductID uint
	Price     float64
	Timestamp time.Time
}

// FetchedPrice is the result of extracting the current offer from a product page.
type FetchedPrice struct {
	Name      string
	Price     float64
	Currency  string
	URL       string
	FetchedAt time.Time
}

// PriceDropEvent records a detected price decrease during a sweep.
type PriceDropEvent struct {
	ProductName string
	OldPrice    float64
	NewPrice    float64
}
