package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dreamlister/dreamlister-api/internal/api/shared"
	"github.com/dreamlister/dreamlister-api/internal/store"
)

// ItemHandler handles the item CRUD API requests. Every operation is scoped
// to the authenticated username placed in the context by the authentication
// middleware; no handler ever reads an owner from the request body or path.
type ItemHandler struct {
	itemStore store.ItemStore
	validator *validator.Validate
}

// NewItemHandler creates a new ItemHandler with the given dependencies.
func NewItemHandler(itemStore store.ItemStore) *ItemHandler {
	return &ItemHandler{
		itemStore: itemStore,
		validator: validator.New(),
	}
}

// List handles GET /items. Returns all items owned by the actor; an empty
// collection is a 200 with an empty array.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := getActor(w, r)
	if !ok {
		return
	}

	items, err := h.itemStore.ListByOwner(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve items")
		return
	}

	shared.Respond(w, r, http.StatusOK, items, "Retrieved user items")
}

// Get handles GET /item/{id}. An item that does not exist and an item owned
// by someone else are both reported as 404.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	username, ok := getActor(w, r)
	if !ok {
		return
	}

	itemID, err := getPathItemID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.itemStore.GetByID(r.Context(), username, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.Respond(w, r, http.StatusOK, item, "Retrieved user item")
}

// Create handles POST /item. The new row's owner is always the actor; the
// allow-list check inside the store rejects any attempt to smuggle a
// username or other non-writable column through newFields.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := getActor(w, r)
	if !ok {
		return
	}

	var req ItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	itemID, err := h.itemStore.Create(r.Context(), username, req.NewFields)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.Respond(w, r, http.StatusCreated, CreatedItem{ItemID: itemID}, "Created item")
}

// Update handles PUT /item/{id}. Updating an item that does not exist in
// the actor's collection is a 404, based on the affected-row count.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	username, ok := getActor(w, r)
	if !ok {
		return
	}

	itemID, err := getPathItemID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.itemStore.Update(r.Context(), username, itemID, req.NewFields); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.Respond(w, r, http.StatusOK, nil, "Updated item")
}

// Delete handles DELETE /item/{id}. Deletion is idempotent: removing an
// absent item succeeds.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := getActor(w, r)
	if !ok {
		return
	}

	itemID, err := getPathItemID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.itemStore.Delete(r.Context(), username, itemID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.Respond(w, r, http.StatusOK, nil, "Deleted item")
}
