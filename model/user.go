package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"user_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
