package handler

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/config"
    "github.com/gnm-events/backend/internal/mailer"
    "github.com/gnm-events/backend/internal/model"
    "github.com/gnm-events/backend/internal/token"
)

// resetAck is the one acknowledgement the request endpoint ever returns:
// the response shape must not reveal whether the email matched an account.
const resetAck = "If an account exists with this email, you will receive reset instructions."

// ResetHandler implements the password-reset flow.  Tokens are derived
// from the user's current password hash (see internal/token), so nothing
// is stored server-side and a completed reset invalidates all outstanding
// links for that user.
type ResetHandler struct {
    Cfg   config.Config
    Users UserStore
    Reset *token.ResetGenerator
    Mail  mailer.Mailer
}

func NewResetHandler(cfg config.Config, u UserStore, g *token.ResetGenerator, m mailer.Mailer) *ResetHandler {
    return &ResetHandler{Cfg: cfg, Users: u, Reset: g, Mail: m}
}

type resetRequestReq struct {
    Email string `json:"email"`
}
type resetConfirmReq struct {
    UID      string `json:"uid"`
    Token    string `json:"token"`
    Password string `json:"password"`
}
type resetValidateReq struct {
    UID   string `json:"uid"`
    Token string `json:"token"`
}

// Request emails a reset link when the address matches an account.  The
// response is identical either way.  A mail delivery failure for a real
// account is a 500: the user must know the link is not coming.
func (h *ResetHandler) Request(c echo.Context) error {
    var req resetRequestReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Email is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusOK, echo.Map{"detail": resetAck})
        }
        c.Logger().Errorf("reset lookup failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }

    tok := h.Reset.Make(u.ID, u.PasswordHash)
    resetURL := fmt.Sprintf("%s/reset-password?uid=%s&token=%s",
        h.Cfg.FrontendURL, token.EncodeUID(u.ID), tok)

    name := u.FirstName
    if name == "" {
        name = u.Username
    }
    body := fmt.Sprintf(`Hello %s,

We received a request to reset your password for your GNM Events account.

Click the link below to reset your password:
%s

This link will expire in 24 hours.

If you didn't request this password reset, please ignore this email.

Best regards,
The GNM Events Team
`, name, resetURL)

    if err := h.Mail.Send(c.Request().Context(), u.Email, "Password Reset Request - GNM Events", body); err != nil {
        c.Logger().Errorf("failed to send password reset email: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Failed to send reset email. Please try again later."})
    }
    c.Logger().Infof("password reset email sent to: %s", email)
    return c.JSON(http.StatusOK, echo.Map{"detail": resetAck})
}

// Confirm verifies a reset link and sets the new password.  The
// confirmation email afterwards is best-effort: the password change
// already succeeded, so a mail failure is logged and swallowed.
func (h *ResetHandler) Confirm(c echo.Context) error {
    var req resetConfirmReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    if req.UID == "" || req.Token == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Missing required fields: uid, token, password"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Password must be at least 8 characters long"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, ok := h.lookup(ctx, req.UID)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid reset link"})
    }
    if !h.Reset.Check(u.ID, u.PasswordHash, req.Token) {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid or expired reset link"})
    }

    hash, err := token.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        c.Logger().Errorf("password hash failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }
    if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
        c.Logger().Errorf("password update failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }
    c.Logger().Infof("password reset successful for user: %s", u.Email)

    name := u.FirstName
    if name == "" {
        name = u.Username
    }
    confirmation := fmt.Sprintf(`Hello %s,

Your password has been changed successfully.

If you did not make this change, please contact our support team immediately.

Best regards,
The GNM Events Team
`, name)
    if err := h.Mail.Send(c.Request().Context(), u.Email, "Password Changed Successfully - GNM Events", confirmation); err != nil {
        c.Logger().Warnf("failed to send password change confirmation: %v", err)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "detail": "Password has been reset successfully. You can now log in with your new password."})
}

// Validate is the read-only pre-check the frontend calls before showing
// the reset form.  Lookup failures report valid=false with a 200, not an
// error: the link's validity is the answer, not a fault.
func (h *ResetHandler) Validate(c echo.Context) error {
    var req resetValidateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    if req.UID == "" || req.Token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "detail": "Missing uid or token"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, ok := h.lookup(ctx, req.UID)
    if !ok {
        return c.JSON(http.StatusOK, echo.Map{"valid": false, "detail": "Token is invalid or expired"})
    }
    valid := h.Reset.Check(u.ID, u.PasswordHash, req.Token)
    detail := "Token is invalid or expired"
    if valid {
        detail = "Token is valid"
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": valid, "detail": detail})
}

// lookup decodes a uid and loads its user; any failure means the link is
// invalid.
func (h *ResetHandler) lookup(ctx context.Context, uid string) (model.User, bool) {
    id, err := token.DecodeUID(uid)
    if err != nil {
        return model.User{}, false
    }
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return model.User{}, false
    }
    return u, true
}
