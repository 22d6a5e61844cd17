package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/impactreport/impact/backend/go-services/internal/sessions"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{"sub": "admin@example.com", "admin": true}}, nil
	case "editortoken":
		return &fakeToken{data: map[string]interface{}{"sub": "editor@example.com", "admin": false}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serve(g *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	require.Equal(t, http.StatusUnauthorized, serve(g, "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	require.Equal(t, http.StatusUnauthorized, serve(g, "BadHeader").Code)
	require.Equal(t, http.StatusUnauthorized, serve(g, "Bearer ").Code)
	require.Equal(t, http.StatusUnauthorized, serve(g, "Bearer wrong").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		tok, _ := c.Get(TokenKey)
		c.JSON(http.StatusOK, gin.H{"claims": claims, "token": tok})
	})
	rw := serve(g, "Bearer goodtoken")

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
	require.Equal(t, "goodtoken", got["token"])
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	token := "black-token"
	require.NoError(t, bl.Revoke(context.Background(), token, 5*time.Second))

	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, bl), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusUnauthorized, serve(g, "Bearer "+token).Code)
	require.Equal(t, http.StatusOK, serve(g, "Bearer goodtoken").Code)
}

func TestRequireAdmin(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(g, "Bearer goodtoken").Code)
	require.Equal(t, http.StatusUnauthorized, serve(g, "Bearer editortoken").Code)
}

func TestRequireAdmin_WithoutClaims(t *testing.T) {
	g := gin.New()
	g.GET("/", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusUnauthorized, serve(g, "").Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", tok)
	tok, ok = BearerToken("bearer xyz")
	require.True(t, ok)
	require.Equal(t, "xyz", tok)
	_, ok = BearerToken("Basic abc")
	require.False(t, ok)
}
