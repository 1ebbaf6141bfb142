package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prem22k/c3-backend/logger"
)

const APIKeyHeader = "x-api-key"

// RequireAPIKey guards a route with a shared key sent in the x-api-key header.
// An unset key is a server misconfiguration, not an open door.
func RequireAPIKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				logger.Log.Error("[auth] API_KEY is not configured; rejecting request.")
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"message": "error",
					"error":   "Server configuration error",
				})
			}

			got := c.Request().Header.Get(APIKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				logger.Log.Warn(fmt.Sprintf("[auth] Invalid or missing API key for %s %s", c.Request().Method, c.Path()))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "error",
					"error":   "Unauthorized: Invalid or missing API key",
				})
			}
			return next(c)
		}
	}
}

func JWTAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ""

			// 1️⃣ Prefer Authorization header
			if parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}

			// 2️⃣ Fallback: ?token= for direct download links
			if tokenString == "" {
				tokenString = c.QueryParam("token")
			}

			if tokenString == "" {
				logger.Log.Warn("[auth] JWT check failed: No token in header or query.")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization token missing"})
			}

			claims, err := ParseJWT(secret, tokenString)
			if err != nil {
				logger.Log.Warn(fmt.Sprintf("[auth] Invalid or expired JWT: %v", err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set("userID", claims.UserID)
			c.Set("userRole", claims.Role)
			c.Set("userEmail", claims.Email)
			return next(c)
		}
	}
}

// AdminOnlyMiddleware checks the role set by JWTAuthMiddleware.
func AdminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("userRole").(string); role != RoleAdmin {
			logger.Log.Warn(fmt.Sprintf("[auth] RBAC FAILED for %v on %s: Access Forbidden.", c.Get("userEmail"), c.Path()))
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Access Forbidden: Admin privileges required"})
		}
		return next(c)
	}
}
