package middleware

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/model"
)

// StaffSource resolves the account behind an authenticated request so the
// staff flag can be checked.  *repository.UserRepo satisfies it.
type StaffSource interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RequireStaff gates a route to staff accounts.  The flag lives in the
// database rather than the JWT, so a demotion takes effect on the next
// request instead of at token expiry.  Must run after CookieAuth.
func RequireStaff(users StaffSource) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := UserID(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided"})
            }
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByID(ctx, id)
            if err != nil || !u.IsActive || !u.IsStaff {
                return c.JSON(http.StatusForbidden, echo.Map{"detail": "Staff access required"})
            }
            return next(c)
        }
    }
}
