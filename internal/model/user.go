package model

import (
    "database/sql"
    "time"
)

// User represents an account row in the `users` table.  Emails are stored
// lowercase and are unique; the username defaults to the email at
// registration and is itself unique.  Optional profile columns are
// nullable.  JSON tags are omitted because handlers define their own
// response DTOs.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lowercase-normalized email address.
//  Username     – unique display name (email by default).
//  FirstName    – given name.
//  LastName     – family name.
//  PasswordHash – bcrypt hashed password.  Empty for OAuth-only accounts
//                 until the user sets one via password reset.
//  IsActive     – whether the account may log in.
//  IsStaff      – grants access to the admin listing endpoints.
//  IsSuperuser  – reserved elevated flag, surfaced in the identity payload.
//  Phone, Location, Bio, Occupation, Website – optional profile fields.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64
    Email        string
    Username     string
    FirstName    string
    LastName     string
    PasswordHash string
    IsActive     bool
    IsStaff      bool
    IsSuperuser  bool
    Phone        sql.NullString
    Location     sql.NullString
    Bio          sql.NullString
    Occupation   sql.NullString
    Website      sql.NullString
    CreatedAt    time.Time
    UpdatedAt    time.Time
}
