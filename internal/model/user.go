package model

import "time"

// User represents an account record as stored in the `users` table.  The
// password hash never leaves the process: it is excluded from JSON.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hash of the password.
//  Email        – optional contact address.
//  CreatedAt    – timestamp of registration.
//  UpdatedAt    – timestamp of the last login or profile change.
type User struct {
    ID           int64     `json:"id"`
    Username     string    `json:"username"`
    PasswordHash string    `json:"-"`
    Email        *string   `json:"email"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}
