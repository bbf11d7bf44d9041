package model

import "time"

// User carries the loyalty-relevant part of a customer profile.
type User struct {
	ID        int64
	Username  string
	Email     string
	Points    int64
	CreatedAt time.Time
}
