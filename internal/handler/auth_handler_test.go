package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/service"
)

func newAuthHandler(key string) *AuthHandler {
	tokens := service.NewTokenService("test_secret", time.Hour)
	return NewAuthHandler(tokens, key)
}

func TestTokenExchangeWithValidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAuthHandler("letmein")

	w := httptest.NewRecorder()
	c := postContext(t, w, "/auth/token", `{"key":"letmein"}`, nil)

	h.Token(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"token"`)
	require.Contains(t, w.Body.String(), `"expires_at"`)
}

func TestTokenExchangeRejectsWrongKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAuthHandler("letmein")

	w := httptest.NewRecorder()
	c := postContext(t, w, "/auth/token", `{"key":"guess"}`, nil)

	h.Token(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenExchangeDisabledWithEmptyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAuthHandler("")

	w := httptest.NewRecorder()
	c := postContext(t, w, "/auth/token", `{"key":""}`, nil)

	h.Token(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
