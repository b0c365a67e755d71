package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	validToken := "test-token-123"
	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		userHeader     string
		handlerCalled  bool
		expectedStatus int
		expectedErrMsg string
	}{
		{
			name:           "Valid token and user id",
			authHeader:     "Bearer " + validToken,
			userHeader:     userID.String(),
			handlerCalled:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing authorization header",
			authHeader:     "",
			userHeader:     userID.String(),
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "missing authorization header",
		},
		{
			name:           "Wrong token",
			authHeader:     "Bearer wrong-token",
			userHeader:     userID.String(),
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Token without Bearer prefix",
			authHeader:     validToken,
			userHeader:     userID.String(),
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Missing user id",
			authHeader:     "Bearer " + validToken,
			userHeader:     "",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "missing or invalid user id",
		},
		{
			name:           "Malformed user id",
			authHeader:     "Bearer " + validToken,
			userHeader:     "not-a-uuid",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "missing or invalid user id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				owner, ok := OwnerFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, userID, owner)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.userHeader != "" {
				req.Header.Set("X-User-ID", tt.userHeader)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(validToken)(handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedErrMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedErrMsg)
			}
		})
	}
}
