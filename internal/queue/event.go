// Package queue defines the message payloads exchanged over the broker and
// the notification consumer that turns them into organization email.
package queue

// Queue names.  One durable queue per event kind.
const (
    ContactQueue = "contact.received"
    BookingQueue = "booking.received"
)

// ContactReceivedEvent is published when a visitor submits the contact
// form.  It carries the full submission so the notification consumer can
// compose the organization email without querying the database.
type ContactReceivedEvent struct {
    ContactID  uint64 `json:"contact_id"`
    Name       string `json:"name"`
    Email      string `json:"email"`
    Subject    string `json:"subject"`
    Message    string `json:"message"`
    ReceivedAt string `json:"received_at"`
}

// BookingReceivedEvent is published when a visitor requests an event
// booking.
type BookingReceivedEvent struct {
    BookingID       uint64 `json:"booking_id"`
    Name            string `json:"name"`
    Email           string `json:"email"`
    Phone           string `json:"phone"`
    EventType       string `json:"event_type"`
    EventDate       string `json:"event_date"`
    Venue           string `json:"venue,omitempty"`
    GuestCount      int    `json:"guest_count"`
    Budget          string `json:"budget,omitempty"`
    SpecialRequests string `json:"special_requests,omitempty"`
    ReceivedAt      string `json:"received_at"`
}
