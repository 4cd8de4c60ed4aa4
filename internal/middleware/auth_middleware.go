package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go-hrflow/internal/shared/apperror"
	"go-hrflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errTokenMissing = apperror.New(apperror.CodeUnauthorized, "token not found", http.StatusUnauthorized)
	errTokenInvalid = apperror.New("INVALID_TOKEN", "invalid token", http.StatusUnauthorized)
	errTokenExpired = apperror.New("TOKEN_EXPIRED", "token has expired", http.StatusUnauthorized)
)

// AuthMiddleware verifies an HS256 access token issued elsewhere and copies
// its identity claims into the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, errTokenMissing)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, errTokenExpired)
				return
			}
			abortWith(c, errTokenInvalid)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, errTokenInvalid)
			return
		}

		ids := make(map[string]string, 3)
		for _, key := range []string{"user_id", "company_id", "employee_id"} {
			v, ok := claims[key].(string)
			if !ok || v == "" {
				response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", key+" not found in token", nil)
				c.Abort()
				return
			}
			ids[key] = v
		}
		role, _ := claims["role"].(string)

		c.Set("user_id", ids["user_id"])
		c.Set("employee_id", ids["employee_id"])
		c.Set("company_id", ids["company_id"])
		c.Set("role", role)

		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
