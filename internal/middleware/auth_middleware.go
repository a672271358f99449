package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// WalletKey is the context key of the signed-in wallet
const WalletKey = "wallet"

// AdminKeyHeader carries the admin key
const AdminKeyHeader = "X-Admin-Key"

// TokenParser resolves a session token to the wallet it was issued for
type TokenParser interface {
	Parse(tokenString string) (string, error)
}

// WalletIdentityMiddleware resolves the optional wallet identity of a request.
// Requests without an Authorization header stay anonymous; a header with a bad token is rejected.
func WalletIdentityMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Wallet sign-in is disabled"})
			return
		}

		wallet, err := tokens.Parse(authHeader[len(BearerSchema):])
		if err != nil {
			logger.Debug("wallet token rejected", zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(WalletKey, wallet)
		c.Next()
	}
}

// Wallet returns the wallet identity of the request, empty when anonymous
func Wallet(c *gin.Context) string {
	return c.GetString(WalletKey)
}

// AdminKeyMiddleware only lets requests through whose X-Admin-Key matches the bcrypt hash.
// An empty hash disables the guarded routes.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin routes are disabled"})
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": AdminKeyHeader + " header is required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			logger.Warn("admin key rejected", zap.String("client", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin key"})
			return
		}
		c.Next()
	}
}
