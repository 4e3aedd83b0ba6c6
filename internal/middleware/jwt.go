package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"projectflow/internal/authz"
	"projectflow/internal/common"
)

const tokenContextKey = "user"

var (
	errMissingToken = common.UnauthenticatedError("Missing or malformed token")
	errInvalidToken = common.UnauthenticatedError("Invalid or expired token")
)

// JWTConfig verifies bearer tokens signed with secret into authz.Claims.
func JWTConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(authz.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) || c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return errMissingToken
			}
			return errInvalidToken
		},
	}
}

// Identity turns the verified token into an authz.Identity on the request context.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return errMissingToken
			}
			claims, ok := token.Claims.(*authz.Claims)
			if !ok {
				return errInvalidToken
			}
			id, err := claims.Identity()
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(authz.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

// Authenticate chains token verification and identity extraction.
func Authenticate(secret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{echojwt.WithConfig(JWTConfig(secret)), Identity()}
}
