package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/forkful/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (v *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	return v.claims, v.err
}

func runWithAuth(t *testing.T, handler gin.HandlerFunc, header string) (*httptest.ResponseRecorder, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got uuid.UUID
	router := gin.New()
	router.GET("/", handler, func(c *gin.Context) {
		got = CallerID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w, got
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID}}
	invalid := &stubValidator{err: errors.New("bad token")}

	t.Run("missing header", func(t *testing.T) {
		w, _ := runWithAuth(t, AuthMiddleware(valid), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w, _ := runWithAuth(t, AuthMiddleware(valid), "token-without-scheme")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w, _ := runWithAuth(t, AuthMiddleware(invalid), "Bearer whatever")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token sets caller", func(t *testing.T) {
		w, got := runWithAuth(t, AuthMiddleware(valid), "Bearer whatever")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, got)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID}}
	invalid := &stubValidator{err: errors.New("bad token")}

	t.Run("anonymous proceeds", func(t *testing.T) {
		w, got := runWithAuth(t, OptionalAuthMiddleware(valid), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uuid.Nil, got)
	})

	t.Run("invalid token proceeds anonymously", func(t *testing.T) {
		w, got := runWithAuth(t, OptionalAuthMiddleware(invalid), "Bearer whatever")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uuid.Nil, got)
	})

	t.Run("valid token sets caller", func(t *testing.T) {
		w, got := runWithAuth(t, OptionalAuthMiddleware(valid), "Bearer whatever")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, got)
	})
}
