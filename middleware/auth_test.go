package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/competition-manager/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func protected(t *testing.T) http.Handler {
	t.Helper()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		w.Header().Set("X-User", userID)
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(testSecret)(RequireRole(models.RoleOrganizer, models.RoleAdmin)(final))
}

func doRequest(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/competitions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	organizer, err := NewToken(testSecret, "u-1", models.RoleOrganizer, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	viewer, err := NewToken(testSecret, "u-2", models.RoleViewer, nil)
	require.NoError(t, err)
	expired, err := NewToken(testSecret, "u-3", models.RoleAdmin, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)
	foreign, err := NewToken([]byte("other-secret"), "u-4", models.RoleAdmin, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"organizer allowed", "Bearer " + organizer, http.StatusOK},
		{"viewer forbidden", "Bearer " + viewer, http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(protected(t), tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u-1", rec.Header().Get("X-User"))
			} else {
				assert.Contains(t, rec.Body.String(), "\"error\"")
			}
		})
	}
}

func TestAuthenticate_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u-1", "role": "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec := doRequest(protected(t), "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContext_NumericClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    "admin",
	}).SignedString(testSecret)
	require.NoError(t, err)

	rec := doRequest(protected(t), "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-User"))
}

func TestGetUserRoleFromContext_UnknownRole(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"role":    "player",
	}).SignedString(testSecret)
	require.NoError(t, err)

	rec := doRequest(protected(t), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
