package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablocarmonaesparza/education-sub001/internal/auth"
)

const testSecret = "test-secret"

func runMiddleware(t *testing.T, authorization string) (*httptest.ResponseRecorder, uuid.UUID) {
	t.Helper()
	var gotUserID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = auth.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	JwtAuthMiddleware(testSecret)(next).ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestJwtAuthMiddlewareValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.NewAccessToken(userID, testSecret, time.Hour)
	require.NoError(t, err)

	rec, gotUserID := runMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUserID, "user id is injected into the request context")
}

func TestJwtAuthMiddlewareMissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtAuthMiddlewareMalformedHeader(t *testing.T) {
	rec, _ := runMiddleware(t, "Token abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtAuthMiddlewareGarbageToken(t *testing.T) {
	rec, _ := runMiddleware(t, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtAuthMiddlewareWrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken(uuid.New(), "other-secret", time.Hour)
	require.NoError(t, err)

	rec, _ := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtAuthMiddlewareExpiredToken(t *testing.T) {
	token, err := auth.NewAccessToken(uuid.New(), testSecret, -time.Hour)
	require.NoError(t, err)

	rec, _ := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
