package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perum-adp-api/internal/models"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, expiry time.Duration) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   "admin-1",
		Email:    "admin@perumadp.id",
		FullName: "Siti Rahma",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter() (*gin.Engine, *models.JWTClaims) {
	gin.SetMode(gin.TestMode)
	captured := &models.JWTClaims{}
	router := gin.New()
	router.GET("/protected", JWT(testSecret), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		*captured = *value.(*models.JWTClaims)
		c.Status(http.StatusOK)
	})
	return router, captured
}

func TestJWTAllowsValidToken(t *testing.T) {
	router, captured := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin-1", captured.UserID)
	require.Equal(t, "Siti Rahma", captured.FullName)
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	router, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abcdef")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	router, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, -time.Minute))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsWrongSignature(t *testing.T) {
	router, _ := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "other-secret", time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
