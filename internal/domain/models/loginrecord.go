package models

import "time"

// LoginRecord captures a single successful sign-in.
// Provider is "form" for the login page and "api" for POST /session.
type LoginRecord struct {
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	IP        string    `bson:"ip"`
	Provider  string    `bson:"provider"`
	Created   bool      `bson:"created"` // the sign-in created the user
}
