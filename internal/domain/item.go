package domain

import (
	"fmt"
	"time"
)

// Item represents one entry in a user's dream list. Every item is owned by
// exactly one username; ownership is set at creation time and never changes.
type Item struct {
	ID          int64     `json:"item_id"`
	Username    string    `json:"username"`
	Title       string    `json:"title,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Qty         int64     `json:"qty,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fields is a client-supplied mapping of item column names to new values,
// as carried in the "newFields" member of create/update request bodies.
type Fields map[string]any

// mutableItemColumns is the allow-list of columns a client may set through
// the create and update routes. Field names are validated against this set
// before any SQL is built; values themselves are always bound as statement
// parameters. Ownership (username) and identity (item_id) are never
// client-writable.
var mutableItemColumns = map[string]struct{}{
	"title":       {},
	"name":        {},
	"description": {},
	"qty":         {},
	"price":       {},
	"notes":       {},
}

// MutableItemColumns returns the allow-listed column names in a stable order.
func MutableItemColumns() []string {
	return []string{"title", "name", "description", "qty", "price", "notes"}
}

// ValidateFields checks a client-supplied field mapping against the
// allow-list. Returns ErrNoFields for an empty mapping and a wrapped
// ErrUnknownField naming the first offending key otherwise.
func ValidateFields(fields Fields) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	for name := range fields {
		if _, ok := mutableItemColumns[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	return nil
}
