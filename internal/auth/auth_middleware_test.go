package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c1a64-5d0c-4c4e-9d8b-0f3f1b2a7c11"

func newProtectedHandler(t *testing.T) (http.Handler, *JWTManager) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(userID))
	})
	return AccessTokenMiddleware(manager)(next), manager
}

func TestAccessTokenMiddleware_ValidToken(t *testing.T) {
	handler, manager := newProtectedHandler(t)
	token, err := manager.GenerateAccessJWT(testUserID, DefaultJWTDuration)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, w.Body.String())
}

func TestAccessTokenMiddleware_Rejects(t *testing.T) {
	handler, manager := newProtectedHandler(t)

	expired, err := manager.GenerateAccessJWT(testUserID, -time.Minute)
	require.NoError(t, err)
	notUUID, err := manager.GenerateAccessJWT("not-a-uuid", DefaultJWTDuration)
	require.NoError(t, err)
	otherManager, err := NewJWTManager("other-secret")
	require.NoError(t, err)
	foreign, err := otherManager.GenerateAccessJWT(testUserID, DefaultJWTDuration)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Authorization header is required"},
		{"no bearer prefix", expired, "Invalid token format"},
		{"expired", "Bearer " + expired, ErrExpiredJWTToken.Error()},
		{"wrong secret", "Bearer " + foreign, "Invalid or expired token"},
		{"garbage", "Bearer abc.def.ghi", "Invalid or expired token"},
		{"user id is not a uuid", "Bearer " + notUUID, ErrInvalidJWTToken.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/protected/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, "error", response.Status)
			assert.Equal(t, tt.message, response.Message)
		})
	}
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
