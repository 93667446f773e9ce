package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gnm-events/backend/internal/model"
	"github.com/gnm-events/backend/internal/token"
)

// UserRepo persists user accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,first_name,last_name,password_hash," +
	"is_active,is_staff,is_superuser,phone,location,bio,occupation,website," +
	"created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.Phone, &u.Location, &u.Bio, &u.Occupation, &u.Website,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a credential-registered user and returns its ID.  The
// username defaults to the email.  The password is hashed here so raw
// passwords never travel further than this call.
func (r *UserRepo) Create(ctx context.Context, email, firstName, lastName, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := token.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, first_name, last_name, password_hash) VALUES (?,?,?,?,?)",
		email, email, firstName, lastName, hash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetOrCreateByEmail resolves the user for an OAuth login.  A new row gets
// an empty password hash (the account can only log in via OAuth until a
// password reset sets one).  A concurrent create for the same email loses
// on the unique key and falls through to the fetch, so first-write-wins.
func (r *UserRepo) GetOrCreateByEmail(ctx context.Context, email, firstName, lastName string) (model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if err != sql.ErrNoRows {
		return model.User{}, false, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, first_name, last_name, password_hash) VALUES (?,?,?,?,'')",
		email, email, firstName, lastName)
	if err != nil && !isDuplicate(err) {
		return model.User{}, false, err
	}
	created := err == nil
	u, err = r.GetByEmail(ctx, email)
	return u, created, err
}

// UpdatePassword replaces the stored password hash.  Changing the hash also
// invalidates every outstanding password-reset token bound to the old one.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?", hash, id)
	return err
}

// ProfileUpdate carries the mutable profile fields.  Names and username are
// required; the pointer fields are applied only when non-nil.
type ProfileUpdate struct {
	FirstName  string
	LastName   string
	Username   string
	Phone      *string
	Location   *string
	Bio        *string
	Occupation *string
	Website    *string
}

// UpdateProfile applies a profile update and returns the fresh row.  A
// username collision with another account maps to ErrUsernameExists via
// the unique key, closing the race an advance lookup would leave open.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (model.User, error) {
	set := []string{"first_name=?", "last_name=?", "username=?", "updated_at=NOW()"}
	args := []interface{}{p.FirstName, p.LastName, p.Username}
	optional := map[string]*string{
		"phone": p.Phone, "location": p.Location, "bio": p.Bio,
		"occupation": p.Occupation, "website": p.Website,
	}
	for _, col := range []string{"phone", "location", "bio", "occupation", "website"} {
		if v := optional[col]; v != nil {
			set = append(set, col+"=?")
			args = append(args, *v)
		}
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// isDuplicate reports whether err is a MySQL unique-key violation (1062).
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "1062") || strings.Contains(s, "Duplicate entry")
}
