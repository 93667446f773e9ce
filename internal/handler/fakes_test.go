package handler

// In-memory fakes for the storage, mail and broker interfaces so handler
// tests run without MySQL, SMTP or RabbitMQ.

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/gnm-events/backend/internal/model"
	"github.com/gnm-events/backend/internal/repository"
	"github.com/gnm-events/backend/internal/token"
)

type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint64]*model.User)}
}

// add seeds a user directly, assigning an id.  IsActive defaults to true
// unless the caller set the zero user up otherwise.
func (f *fakeUserStore) add(u model.User) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = f.seq
	u.Email = strings.ToLower(u.Email)
	if u.Username == "" {
		u.Username = u.Email
	}
	u.CreatedAt = time.Now()
	f.users[u.ID] = &u
	return u
}

func (f *fakeUserStore) findByEmail(email string) *model.User {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u
		}
	}
	return nil
}

func (f *fakeUserStore) Create(_ context.Context, email, firstName, lastName, password string, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findByEmail(email) != nil {
		return 0, repository.ErrEmailExists
	}
	hash, err := token.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.seq++
	f.users[f.seq] = &model.User{
		ID: f.seq, Email: strings.ToLower(email), Username: strings.ToLower(email),
		FirstName: firstName, LastName: lastName, PasswordHash: hash, IsActive: true,
	}
	return f.seq, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.findByEmail(email); u != nil {
		return *u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) GetOrCreateByEmail(_ context.Context, email, firstName, lastName string) (model.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.findByEmail(email); u != nil {
		return *u, false, nil
	}
	f.seq++
	u := &model.User{
		ID: f.seq, Email: strings.ToLower(email), Username: strings.ToLower(email),
		FirstName: firstName, LastName: lastName, IsActive: true,
	}
	f.users[u.ID] = u
	return *u, true, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uint64, p repository.ProfileUpdate) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	for _, other := range f.users {
		if other.ID != id && other.Username == p.Username {
			return model.User{}, repository.ErrUsernameExists
		}
	}
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Username = p.Username
	if p.Phone != nil {
		u.Phone = sql.NullString{String: *p.Phone, Valid: true}
	}
	if p.Location != nil {
		u.Location = sql.NullString{String: *p.Location, Valid: true}
	}
	if p.Bio != nil {
		u.Bio = sql.NullString{String: *p.Bio, Valid: true}
	}
	if p.Occupation != nil {
		u.Occupation = sql.NullString{String: *p.Occupation, Valid: true}
	}
	if p.Website != nil {
		u.Website = sql.NullString{String: *p.Website, Valid: true}
	}
	return *u, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type publishedEvent struct {
	queue string
	event interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   error
}

func (f *fakePublisher) Publish(_ context.Context, queueName string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.events = append(f.events, publishedEvent{queue: queueName, event: event})
	return nil
}

type fakeContactStore struct {
	mu   sync.Mutex
	seq  uint64
	rows []model.ContactMessage
}

func (f *fakeContactStore) Insert(_ context.Context, m model.ContactMessage) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	m.ID = f.seq
	m.CreatedAt = time.Now()
	f.rows = append(f.rows, m)
	return m.ID, nil
}

func (f *fakeContactStore) List(_ context.Context, limit int) ([]model.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ContactMessage, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

type fakeBookingStore struct {
	mu   sync.Mutex
	seq  uint64
	rows []model.Booking
}

func (f *fakeBookingStore) Insert(_ context.Context, b model.Booking) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = f.seq
	b.CreatedAt = time.Now()
	f.rows = append(f.rows, b)
	return b.ID, nil
}

func (f *fakeBookingStore) List(_ context.Context, limit int) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Booking, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}
