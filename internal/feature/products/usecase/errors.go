// Package usecase implements the business logic for the products feature.
package usecase

import "errors"

var (
	// ErrProductAlreadyExists is returned when onboarding a URL that is already tracked.
	ErrProductAlreadyExists = errors.New("product with this url already exists")

	// ErrProductNotFound is returned when a product cannot be found by URL or ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrFetchFailed is returned when the page fetcher could not produce a price
	// for a URL during onboarding.
	ErrFetchFailed = errors.New("failed to fetch product details")

	// ErrStalePrice is returned when a price update lost the race against a
	// concurrent sweep of the same product. The caller should skip the product.
	ErrStalePrice = errors.New("stored price changed since it was read")
)
