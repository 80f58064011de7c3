package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// TokenCookie is the cookie carrying the session token
	TokenCookie = "token"

	claimsContextKey = "user"
)

// UserClaims are carried by member and admin tokens
type UserClaims struct {
	UserID    int64  `json:"uid,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs claims with HS256 and the given lifetime
func IssueToken(secret string, claims UserClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func jwtConfig(secret string, optional bool) echojwt.Config {
	return echojwt.Config{
		SigningKey:  []byte(secret),
		ContextKey:  claimsContextKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:" + TokenCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(UserClaims)
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(c echo.Context, err error) error {
			if optional {
				return nil
			}
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error":   "UNAUTHORIZED",
				"message": "Authentication required",
			})
		},
	}
}

// RequireUser rejects requests without a valid token
func RequireUser(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(secret, false))
}

// OptionalUser parses a token when present and lets anonymous requests through
func OptionalUser(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(secret, true))
}

// RequireRole must run after RequireUser
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil || claims.Role != role {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":   "FORBIDDEN",
					"message": "Insufficient permissions",
				})
			}
			return next(c)
		}
	}
}

// CurrentClaims returns the claims of the authenticated caller, nil for anonymous requests
func CurrentClaims(c echo.Context) *UserClaims {
	token, ok := c.Get(claimsContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUserID returns the member id of the caller, 0 when anonymous or admin
func CurrentUserID(c echo.Context) int64 {
	claims := CurrentClaims(c)
	if claims == nil || claims.Role != RoleUser {
		return 0
	}
	return claims.UserID
}

// SetTokenCookie stores the token in an http-only cookie
func SetTokenCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
