package dto

import "time"

// ProductResponse is the JSON representation of a tracked product.
type ProductResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	CurrentPrice   float64   `json:"current_price"`
	Currency       string    `json:"currency"`
	RecipientEmail string    `json:"recipient_email"`
	AddedAt        time.Time `json:"added_at"`
}

// AddProductResponse is the response body for a successful /add_product call.
type AddProductResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// PriceDropResponse is one detected price drop in a /check_prices response.
type PriceDropResponse struct {
	ProductName string  `json:"product_name"`
	OldPrice    float64 `json:"old_price"`
	NewPrice    float64 `json:"new_price"`
}

// SweepResponse is the response body for /check_prices.
// Error carries the aggregated partial-failure message when some products
// could not be updated; the notifications that did succeed are still listed.
type SweepResponse struct {
	Notifications []PriceDropResponse `json:"notifications"`
	Error         string              `json:"error,omitempty"`
}

// PriceHistoryEntryResponse is one observed price in a product's history.
type PriceHistoryEntryResponse struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
