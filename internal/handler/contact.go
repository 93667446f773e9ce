package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/model"
    "github.com/gnm-events/backend/internal/queue"
)

// adminListLimit caps the admin listing endpoints.
const adminListLimit = 200

// ContactHandler accepts contact form submissions and lists them for
// staff.  Submissions are anonymous; the auth layer is involved only on
// the admin side.
type ContactHandler struct {
    Contacts  ContactStore
    Publisher EventPublisher
}

func NewContactHandler(s ContactStore, p EventPublisher) *ContactHandler {
    return &ContactHandler{Contacts: s, Publisher: p}
}

type contactReq struct {
    Name    string `json:"name"`
    Email   string `json:"email"`
    Subject string `json:"subject"`
    Message string `json:"message"`
}

// Create stores a contact message and publishes a notification event.
// Publishing is best-effort: the submission is already persisted, so a
// broker outage only costs the email.
func (h *ContactHandler) Create(c echo.Context) error {
    var req contactReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Subject = strings.TrimSpace(req.Subject)
    req.Message = strings.TrimSpace(req.Message)
    if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Missing required fields: name, email, subject, message"})
    }
    if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid email format"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Contacts.Insert(ctx, model.ContactMessage{
        Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message,
    })
    if err != nil {
        c.Logger().Errorf("contact insert failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }

    if err := h.Publisher.Publish(c.Request().Context(), queue.ContactQueue, queue.ContactReceivedEvent{
        ContactID:  id,
        Name:       req.Name,
        Email:      req.Email,
        Subject:    req.Subject,
        Message:    req.Message,
        ReceivedAt: time.Now().UTC().Format(time.RFC3339),
    }); err != nil {
        c.Logger().Warnf("contact event publish failed: %v", err)
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "id":      id,
        "name":    req.Name,
        "email":   req.Email,
        "subject": req.Subject,
        "message": req.Message,
    })
}

// List returns recent contact messages, newest first.  Staff only (the
// route applies the staff gate).
func (h *ContactHandler) List(c echo.Context) error {
    limit := adminListLimit
    if q := c.QueryParam("limit"); q != "" {
        if n, err := strconv.Atoi(q); err == nil && n > 0 && n < adminListLimit {
            limit = n
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    msgs, err := h.Contacts.List(ctx, limit)
    if err != nil {
        c.Logger().Errorf("contact list failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }

    out := make([]echo.Map, 0, len(msgs))
    for _, m := range msgs {
        out = append(out, echo.Map{
            "id":         m.ID,
            "name":       m.Name,
            "email":      m.Email,
            "subject":    m.Subject,
            "message":    m.Message,
            "created_at": m.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, out)
}
