// Package dto defines data transfer objects for the products feature's HTTP transport layer.
package dto

// AddProductReq represents the request body for the /add_product endpoint.
// It uses Gin's binding tags for validation (required fields, url and email format).
type AddProductReq struct {
	URL            string `json:"url" binding:"required,url"`
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
}
