package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/catalog-aggregator/internal/auth"
	"github.com/labstack/echo/v4"
)

// ClaimsKey is the echo context key holding *auth.Claims.
const ClaimsKey = "claims"

type errorResponse struct {
	Error string `json:"error"`
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the access_token cookie.
func ExtractToken(c echo.Context) string {
	if authz := c.Request().Header.Get(echo.HeaderAuthorization); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthJWT validates the bearer token and stores its claims on the context.
func AuthJWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ExtractToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token has expired"
				}
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg})
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole lets the request through when the caller has one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
		}
	}
}

func GetClaims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	return claims, ok
}
