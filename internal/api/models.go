package api

import "github.com/dreamlister/dreamlister-api/internal/domain"

// Common request/response structures

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email"    validate:"required,email"`
}

// LoginRequest defines the payload for the login endpoint. The password cap
// mirrors registration: bcrypt never accepts more than 72 bytes, so longer
// input can only ever be a malformed request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
}

// ItemRequest defines the payload for the item create and update endpoints.
// NewFields carries the column/value mapping to apply; field names are
// validated against the domain allow-list before any statement is built.
type ItemRequest struct {
	NewFields domain.Fields `json:"newFields" validate:"required"`
}

// CreatedItem is the data payload returned by the item create endpoint.
type CreatedItem struct {
	ItemID int64 `json:"item_id"`
}
