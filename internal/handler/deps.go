// Package handler implements the HTTP endpoints.  Handlers depend on small
// interfaces declared here so tests can swap in in-memory fakes; the MySQL
// repositories and the AMQP publisher satisfy them in production.
package handler

import (
    "context"

    "github.com/gnm-events/backend/internal/model"
    "github.com/gnm-events/backend/internal/oauth"
    "github.com/gnm-events/backend/internal/repository"
)

// UserStore is the account storage surface the auth endpoints need.
// Implemented by *repository.UserRepo.
type UserStore interface {
    Create(ctx context.Context, email, firstName, lastName, password string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    GetOrCreateByEmail(ctx context.Context, email, firstName, lastName string) (model.User, bool, error)
    UpdatePassword(ctx context.Context, id uint64, hash string) error
    UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) (model.User, error)
}

// ContactStore persists contact messages.  Implemented by *repository.ContactRepo.
type ContactStore interface {
    Insert(ctx context.Context, m model.ContactMessage) (uint64, error)
    List(ctx context.Context, limit int) ([]model.ContactMessage, error)
}

// BookingStore persists booking requests.  Implemented by *repository.BookingRepo.
type BookingStore interface {
    Insert(ctx context.Context, b model.Booking) (uint64, error)
    List(ctx context.Context, limit int) ([]model.Booking, error)
}

// Provider performs the OAuth code exchange.  Implemented by *oauth.Client;
// tests point it at httptest servers instead.
type Provider interface {
    Exchange(ctx context.Context, code string) (string, error)
    FetchUserInfo(ctx context.Context, accessToken string) (oauth.UserInfo, error)
}

// EventPublisher hands domain events to the message broker.  Publish
// failures are logged by callers and never fail the request.
type EventPublisher interface {
    Publish(ctx context.Context, queueName string, event interface{}) error
}

// userResponse is the identity payload returned by the me and profile
// endpoints.
type userResponse struct {
    ID          uint64 `json:"id"`
    Email       string `json:"email"`
    Username    string `json:"username"`
    FirstName   string `json:"first_name"`
    LastName    string `json:"last_name"`
    IsStaff     bool   `json:"is_staff"`
    IsSuperuser bool   `json:"is_superuser"`
    Phone       string `json:"phone,omitempty"`
    Location    string `json:"location,omitempty"`
    Bio         string `json:"bio,omitempty"`
    Occupation  string `json:"occupation,omitempty"`
    Website     string `json:"website,omitempty"`
}

func toUserResponse(u model.User) userResponse {
    return userResponse{
        ID:          u.ID,
        Email:       u.Email,
        Username:    u.Username,
        FirstName:   u.FirstName,
        LastName:    u.LastName,
        IsStaff:     u.IsStaff,
        IsSuperuser: u.IsSuperuser,
        Phone:       u.Phone.String,
        Location:    u.Location.String,
        Bio:         u.Bio.String,
        Occupation:  u.Occupation.String,
        Website:     u.Website.String,
    }
}
