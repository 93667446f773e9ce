package model

import (
    "database/sql"
    "time"
)

// ContactMessage is a row in the `contact_messages` table, written when a
// visitor submits the contact form.
type ContactMessage struct {
    ID        uint64
    Name      string
    Email     string
    Subject   string
    Message   string
    CreatedAt time.Time
}

// Booking is a row in the `bookings` table, written when a visitor requests
// an event booking.  Venue, Budget and SpecialRequests are optional.
type Booking struct {
    ID              uint64
    Name            string
    Email           string
    Phone           string
    EventType       string
    EventDate       time.Time
    Venue           sql.NullString
    GuestCount      int
    Budget          sql.NullString
    SpecialRequests sql.NullString
    CreatedAt       time.Time
}
