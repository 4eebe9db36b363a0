package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamlister/dreamlister-api/internal/api/shared"
	"github.com/dreamlister/dreamlister-api/internal/domain"
	"github.com/dreamlister/dreamlister-api/internal/service/auth"
	"github.com/dreamlister/dreamlister-api/internal/store"
)

// mockUserStore is an in-memory implementation of store.UserStore.
type mockUserStore struct {
	users     map[string]*domain.User
	createErr error
	getErr    error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return store.ErrUsernameExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// mockHasher is a deterministic stand-in for the bcrypt hasher.
type mockHasher struct {
	hashErr error
}

func (m *mockHasher) Hash(ctx context.Context, password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}

// mockTokenService issues a fixed token.
type mockTokenService struct {
	generateErr error
}

func (m *mockTokenService) GenerateToken(ctx context.Context, username string) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "token-for-" + username, nil
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	username := strings.TrimPrefix(tokenString, "token-for-")
	if username == tokenString {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{Username: username}, nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) shared.Response {
	t.Helper()
	var resp shared.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		existing       *domain.User
		createErr      error
		hashErr        error
		generateErr    error
		expectedStatus int
		expectedData   any
	}{
		{
			name:           "successful registration",
			body:           `{"username":"alice","password":"p1","email":"a@x.com"}`,
			expectedStatus: http.StatusCreated,
			expectedData:   "token-for-alice",
		},
		{
			name:           "missing password",
			body:           `{"username":"alice","email":"a@x.com"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			body:           `{"username":"alice","password":"p1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed email",
			body:           `{"username":"alice","password":"p1","email":"nope"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			body: `{"username":"alice","password":"p1","email":"a@x.com"}`,
			existing: &domain.User{
				Username:       "alice",
				Email:          "a@x.com",
				HashedPassword: "hashed:p1",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "store failure",
			body:           `{"username":"alice","password":"p1","email":"a@x.com"}`,
			createErr:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "hashing failure",
			body:           `{"username":"alice","password":"p1","email":"a@x.com"}`,
			hashErr:        errors.New("entropy exhausted"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "token signing failure",
			body:           `{"username":"alice","password":"p1","email":"a@x.com"}`,
			generateErr:    errors.New("bad key"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userStore := newMockUserStore()
			if tt.existing != nil {
				userStore.users[tt.existing.Username] = tt.existing
			}
			userStore.createErr = tt.createErr

			h := NewAuthHandler(
				userStore,
				&mockTokenService{generateErr: tt.generateErr},
				&mockHasher{hashErr: tt.hashErr},
			)

			req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.NotEmpty(t, resp.Message)
			if tt.expectedData != nil {
				assert.Equal(t, tt.expectedData, resp.Data)
			}

			if tt.expectedStatus == http.StatusCreated {
				// Plaintext never reaches the store.
				stored := userStore.users["alice"]
				require.NotNil(t, stored)
				assert.Empty(t, stored.Password)
				assert.Equal(t, "hashed:p1", stored.HashedPassword)
			}

			// Raw error detail must never leak into the response body.
			if tt.createErr != nil {
				assert.NotContains(t, rec.Body.String(), tt.createErr.Error())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	registered := &domain.User{
		Username:       "alice",
		Email:          "a@x.com",
		HashedPassword: "hashed:p1",
	}

	tests := []struct {
		name           string
		body           string
		existing       *domain.User
		getErr         error
		expectedStatus int
		expectedData   any
	}{
		{
			name:           "successful login",
			body:           `{"username":"alice","password":"p1"}`,
			existing:       registered,
			expectedStatus: http.StatusOK,
			expectedData:   "token-for-alice",
		},
		{
			name:           "missing username",
			body:           `{"password":"p1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing password",
			body:           `{"username":"alice"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown username",
			body:           `{"username":"bob","password":"p1"}`,
			existing:       registered,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "incorrect password",
			body:           `{"username":"alice","password":"p2"}`,
			existing:       registered,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "password beyond bcrypt limit",
			body:           `{"username":"alice","password":"` + strings.Repeat("p", 73) + `"}`,
			existing:       registered,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "store failure",
			body:           `{"username":"alice","password":"p1"}`,
			getErr:         errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userStore := newMockUserStore()
			if tt.existing != nil {
				userStore.users[tt.existing.Username] = tt.existing
			}
			userStore.getErr = tt.getErr

			h := NewAuthHandler(userStore, &mockTokenService{}, &mockHasher{})

			req := httptest.NewRequest(http.MethodPut, "/auth", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.NotEmpty(t, resp.Message)
			if tt.expectedData != nil {
				assert.Equal(t, tt.expectedData, resp.Data)
			}

			// The stored hash must never appear in any response.
			assert.NotContains(t, rec.Body.String(), "hashed:p1")
		})
	}
}
