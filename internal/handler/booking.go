package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/model"
    "github.com/gnm-events/backend/internal/queue"
)

// BookingHandler accepts event booking requests and lists them for staff.
type BookingHandler struct {
    Bookings  BookingStore
    Publisher EventPublisher
}

func NewBookingHandler(s BookingStore, p EventPublisher) *BookingHandler {
    return &BookingHandler{Bookings: s, Publisher: p}
}

type bookingReq struct {
    Name            string `json:"name"`
    Email           string `json:"email"`
    Phone           string `json:"phone"`
    EventType       string `json:"eventType"`
    EventDate       string `json:"eventDate"` // YYYY-MM-DD
    Venue           string `json:"venue"`
    GuestCount      int    `json:"guestCount"`
    Budget          string `json:"budget"`
    SpecialRequests string `json:"specialRequests"`
}

// Create stores a booking request and publishes a notification event.
func (h *BookingHandler) Create(c echo.Context) error {
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid JSON data"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Phone = strings.TrimSpace(req.Phone)
    req.EventType = strings.TrimSpace(req.EventType)
    if req.Name == "" || req.Email == "" || req.Phone == "" || req.EventType == "" || req.EventDate == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "detail": "Missing required fields: name, email, phone, eventType, eventDate"})
    }
    if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid email format"})
    }
    eventDate, err := time.Parse("2006-01-02", req.EventDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid eventDate, expected YYYY-MM-DD"})
    }
    if req.GuestCount <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "guestCount must be a positive number"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Bookings.Insert(ctx, model.Booking{
        Name:            req.Name,
        Email:           req.Email,
        Phone:           req.Phone,
        EventType:       req.EventType,
        EventDate:       eventDate,
        Venue:           nullable(req.Venue),
        GuestCount:      req.GuestCount,
        Budget:          nullable(req.Budget),
        SpecialRequests: nullable(req.SpecialRequests),
    })
    if err != nil {
        c.Logger().Errorf("booking insert failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }

    if err := h.Publisher.Publish(c.Request().Context(), queue.BookingQueue, queue.BookingReceivedEvent{
        BookingID:       id,
        Name:            req.Name,
        Email:           req.Email,
        Phone:           req.Phone,
        EventType:       req.EventType,
        EventDate:       req.EventDate,
        Venue:           req.Venue,
        GuestCount:      req.GuestCount,
        Budget:          req.Budget,
        SpecialRequests: req.SpecialRequests,
        ReceivedAt:      time.Now().UTC().Format(time.RFC3339),
    }); err != nil {
        c.Logger().Warnf("booking event publish failed: %v", err)
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "id":         id,
        "name":       req.Name,
        "email":      req.Email,
        "eventType":  req.EventType,
        "eventDate":  req.EventDate,
        "guestCount": req.GuestCount,
    })
}

// List returns recent booking requests, newest first.  Staff only.
func (h *BookingHandler) List(c echo.Context) error {
    limit := adminListLimit
    if q := c.QueryParam("limit"); q != "" {
        if n, err := strconv.Atoi(q); err == nil && n > 0 && n < adminListLimit {
            limit = n
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bookings, err := h.Bookings.List(ctx, limit)
    if err != nil {
        c.Logger().Errorf("booking list failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "An error occurred. Please try again."})
    }

    out := make([]echo.Map, 0, len(bookings))
    for _, b := range bookings {
        out = append(out, echo.Map{
            "id":              b.ID,
            "name":            b.Name,
            "email":           b.Email,
            "phone":           b.Phone,
            "eventType":       b.EventType,
            "eventDate":       b.EventDate.Format("2006-01-02"),
            "venue":           b.Venue.String,
            "guestCount":      b.GuestCount,
            "budget":          b.Budget.String,
            "specialRequests": b.SpecialRequests.String,
            "created_at":      b.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, out)
}

func nullable(s string) sql.NullString {
    s = strings.TrimSpace(s)
    return sql.NullString{String: s, Valid: s != ""}
}
