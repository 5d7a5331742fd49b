package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	appctx "github.com/vocalearn/backend/internal/context"
	"github.com/vocalearn/backend/internal/dal"
)

var unauthorizedResponse = ErrorResponse{"Unauthorized"} //nolint:gochecknoglobals // this is a constant response for unauthorized access

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(cookieProc *CookiesProcessor, jwtProc *JWTProcessor, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := cookieProc.GetAccessToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			username, permission, err := jwtProc.ParseAccessToken(token)
			if err != nil {
				log.WarnContext(c.Request().Context(), "parse access token", "error", err)
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			setUser(c, appctx.User{Username: username, Permission: permission})

			return next(c)
		}
	}
}

// OptionalAuthMiddleware resolves the user when a valid access token is
// present and lets the request through either way. Review submissions work
// anonymously, persistence just stays off.
func OptionalAuthMiddleware(cookieProc *CookiesProcessor, jwtProc *JWTProcessor, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := cookieProc.GetAccessToken(c)
			if !ok {
				return next(c)
			}

			username, permission, err := jwtProc.ParseAccessToken(token)
			if err != nil {
				log.DebugContext(c.Request().Context(), "parse access token", "error", err)
				return next(c)
			}

			setUser(c, appctx.User{Username: username, Permission: permission})

			return next(c)
		}
	}
}

// AdminMiddleware requires an already-authenticated user with the admin
// permission; chain it after AuthMiddleware.
func AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := appctx.UserFromContext(c.Request().Context())
			if !ok || user.Permission != dal.PermissionAdmin {
				return c.JSON(http.StatusForbidden, ForbiddenError)
			}
			return next(c)
		}
	}
}

func setUser(c echo.Context, user appctx.User) {
	c.Set("user", user)
	c.SetRequest(c.Request().WithContext(appctx.WithUser(c.Request().Context(), user)))
}
