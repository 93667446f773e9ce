package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/middleware"
    "github.com/gnm-events/backend/internal/repository"
)

// ProfileHandler updates the authenticated user's profile.
type ProfileHandler struct {
    Users UserStore
}

func NewProfileHandler(u UserStore) *ProfileHandler { return &ProfileHandler{Users: u} }

type profileUpdateReq struct {
    FirstName  string  `json:"first_name"`
    LastName   string  `json:"last_name"`
    Username   string  `json:"username"`
    Phone      *string `json:"phone"`
    Location   *string `json:"location"`
    Bio        *string `json:"bio"`
    Occupation *string `json:"occupation"`
    Website    *string `json:"website"`
}

// Update applies a profile patch.  Names and username are required; the
// optional fields are written only when present in the request body, so a
// PATCH that omits them leaves them untouched.
func (h *ProfileHandler) Update(c echo.Context) error {
    id, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided"})
    }

    var req profileUpdateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    req.Username = strings.TrimSpace(req.Username)
    if req.FirstName == "" || req.LastName == "" || req.Username == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "First name, last name, and username are required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.UpdateProfile(ctx, id, repository.ProfileUpdate{
        FirstName:  req.FirstName,
        LastName:   req.LastName,
        Username:   req.Username,
        Phone:      req.Phone,
        Location:   req.Location,
        Bio:        req.Bio,
        Occupation: req.Occupation,
        Website:    req.Website,
    })
    if err != nil {
        if errors.Is(err, repository.ErrUsernameExists) {
            return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Username is already taken"})
        }
        c.Logger().Errorf("profile update failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to update profile. Please try again."})
    }
    c.Logger().Infof("profile updated for user: %s", u.Email)
    return c.JSON(http.StatusOK, toUserResponse(u))
}
