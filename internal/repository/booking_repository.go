package repository

import (
	"context"
	"database/sql"

	"github.com/gnm-events/backend/internal/model"
)

// BookingRepo persists event booking requests.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Insert stores a booking request and returns its ID.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO bookings
		 (name, email, phone, event_type, event_date, venue, guest_count, budget, special_requests)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		b.Name, b.Email, b.Phone, b.EventType, b.EventDate,
		b.Venue, b.GuestCount, b.Budget, b.SpecialRequests)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns booking requests newest first, capped at limit.
func (r *BookingRepo) List(ctx context.Context, limit int) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,name,email,phone,event_type,event_date,venue,guest_count,budget,special_requests,created_at
		 FROM bookings ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.EventType, &b.EventDate,
			&b.Venue, &b.GuestCount, &b.Budget, &b.SpecialRequests, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
