package model

import "time"

// Medication is a drug a user takes, as stored in the `medications` table.
// Each medication belongs to exactly one user and disappears with them.
//
// Fields:
//  Time       – human readable time of day, e.g. "08:00" or "after lunch".
//  ExpiryDate – optional YYYY-MM-DD date.
//  Notes      – optional free text.
type Medication struct {
    ID         int64     `json:"id"`
    UserID     int64     `json:"user_id"`
    Name       string    `json:"name"`
    Dose       string    `json:"dose"`
    Frequency  string    `json:"frequency"`
    Time       string    `json:"time"`
    ExpiryDate *string   `json:"expiry_date"`
    Notes      *string   `json:"notes"`
    CreatedAt  time.Time `json:"created_at"`
    UpdatedAt  time.Time `json:"updated_at"`
}
