package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/config"
    "github.com/gnm-events/backend/internal/middleware"
    "github.com/gnm-events/backend/internal/repository"
    "github.com/gnm-events/backend/internal/session"
    "github.com/gnm-events/backend/internal/token"
)

// AuthHandler bundles dependencies for the credential auth endpoints.
// Tokens travel exclusively in httpOnly cookies; response bodies carry
// only a detail message, never the tokens themselves.
type AuthHandler struct {
    Cfg      config.Config
    Users    UserStore
    Tokens   *token.Service
    Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, u UserStore, t *token.Service, s *session.Manager) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Sessions: s}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type registerReq struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Email     string `json:"email"`
    Password  string `json:"password"`
}

// Login verifies email/password and sets the cookie pair.  Unknown email
// and wrong password produce the identical response so the endpoint cannot
// be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Email and password are required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
        }
        c.Logger().Errorf("login lookup failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }
    if !token.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "User account is disabled"})
    }

    pair, err := h.Tokens.IssuePair(u.ID)
    if err != nil {
        c.Logger().Errorf("token issue failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }
    h.Sessions.SetPair(c.Response(), pair.Access, pair.Refresh)
    c.Logger().Infof("user logged in: %s", u.Email)
    return c.JSON(http.StatusOK, echo.Map{"detail": "Login successful"})
}

// Refresh mints a new access cookie from the refresh cookie.  The refresh
// token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw, ok := h.Sessions.Refresh(c.Request())
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Refresh token missing"})
    }
    access, _, err := h.Tokens.Refresh(raw)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid refresh token"})
    }
    h.Sessions.SetAccess(c.Response(), access)
    return c.JSON(http.StatusOK, echo.Map{"detail": "Token refreshed"})
}

// Logout clears both cookies.  Idempotent: it succeeds for anonymous
// callers too.
func (h *AuthHandler) Logout(c echo.Context) error {
    h.Sessions.Clear(c.Response())
    return c.JSON(http.StatusOK, echo.Map{"detail": "Successfully logged out"})
}

// Register creates an account.  The username defaults to the email; the
// password is stored as a bcrypt hash and never logged.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))

    if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "detail": "Missing required fields: first_name, last_name, email, password"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Password must be at least 8 characters long"})
    }
    if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid email format"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Users.Create(ctx, req.Email, req.FirstName, req.LastName, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusBadRequest, echo.Map{"detail": "User with this email already exists"})
        }
        c.Logger().Errorf("registration failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Registration failed. Please try again."})
    }

    c.Logger().Infof("new user registered: %s", req.Email)
    return c.JSON(http.StatusCreated, echo.Map{
        "detail":  "Account created successfully",
        "user_id": id,
        "email":   req.Email,
    })
}

// Me returns the authenticated user's identity payload.
func (h *AuthHandler) Me(c echo.Context) error {
    id, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided"})
        }
        c.Logger().Errorf("me lookup failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to fetch user data."})
    }
    return c.JSON(http.StatusOK, toUserResponse(u))
}
