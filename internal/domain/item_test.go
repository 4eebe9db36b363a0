package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamlister/dreamlister-api/internal/domain"
)

func TestValidateFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  domain.Fields
		wantErr error
	}{
		{
			name:   "single allowed field",
			fields: domain.Fields{"title": "book"},
		},
		{
			name: "all allowed fields",
			fields: domain.Fields{
				"title":       "book",
				"name":        "x",
				"description": "a thing",
				"qty":         1,
				"price":       9.99,
				"notes":       "soon",
			},
		},
		{
			name:    "nil mapping",
			fields:  nil,
			wantErr: domain.ErrNoFields,
		},
		{
			name:    "empty mapping",
			fields:  domain.Fields{},
			wantErr: domain.ErrNoFields,
		},
		{
			name:    "username is not client-writable",
			fields:  domain.Fields{"title": "book", "username": "mallory"},
			wantErr: domain.ErrUnknownField,
		},
		{
			name:    "item_id is not client-writable",
			fields:  domain.Fields{"item_id": 7},
			wantErr: domain.ErrUnknownField,
		},
		{
			name:    "arbitrary column rejected",
			fields:  domain.Fields{"hashed_password": "x"},
			wantErr: domain.ErrUnknownField,
		},
		{
			name:    "sql injection in field name rejected",
			fields:  domain.Fields{"title = 'x', username": "mallory"},
			wantErr: domain.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := domain.ValidateFields(tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMutableItemColumns(t *testing.T) {
	t.Parallel()

	cols := domain.MutableItemColumns()
	assert.Equal(t, []string{"title", "name", "description", "qty", "price", "notes"}, cols)

	// Every listed column must pass validation on its own.
	for _, col := range cols {
		assert.NoError(t, domain.ValidateFields(domain.Fields{col: "v"}))
	}
}
