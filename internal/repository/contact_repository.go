package repository

import (
	"context"
	"database/sql"

	"github.com/gnm-events/backend/internal/model"
)

// ContactRepo persists contact form submissions.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// Insert stores a contact message and returns its ID.
func (r *ContactRepo) Insert(ctx context.Context, m model.ContactMessage) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, subject, message) VALUES (?,?,?,?)",
		m.Name, m.Email, m.Subject, m.Message)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns contact messages newest first, capped at limit.
func (r *ContactRepo) List(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,subject,message,created_at FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
