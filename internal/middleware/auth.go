package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by RequireOperator.
const (
	OperatorIDKey   = "operator_id"
	OperatorNameKey = "operator"
)

// OperatorClaims are the claims of an operator bearer token.
type OperatorClaims struct {
	OperatorID int64  `json:"operator_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs an operator token valid for ttl.
func IssueToken(secret string, operatorID int64, username string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := OperatorClaims{
		OperatorID: operatorID,
		Username:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates an operator token.
func ParseToken(secret, token string) (*OperatorClaims, error) {
	var claims OperatorClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &claims, nil
}

// RequireOperator validates the bearer token and sets the operator in the
// context.
func RequireOperator(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(secret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(OperatorIDKey, claims.OperatorID)
		c.Set(OperatorNameKey, claims.Username)
		c.Next()
	}
}
