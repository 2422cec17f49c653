package rest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// Claims carried by access tokens. The subject is the numeric user id.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates the HS256 bearer token and stores the Caller in the
// request context.
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				return fmt.Errorf("missing bearer token: %w", model.ErrUnauthenticated)
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				return fmt.Errorf("invalid token: %w", model.ErrUnauthenticated)
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid token subject: %w", model.ErrUnauthenticated)
			}

			c.Set(callerKey, service.Caller{UserID: userID, Admin: claims.Admin})
			return next(c)
		}
	}
}

func callerFrom(c echo.Context) (service.Caller, error) {
	caller, ok := c.Get(callerKey).(service.Caller)
	if !ok {
		return service.Caller{}, model.ErrUnauthenticated
	}
	return caller, nil
}
