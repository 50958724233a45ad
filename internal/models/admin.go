package models

import "time"

type Admin struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	FullName       string    `db:"full_name"`
	HashedPassword string    `db:"password_hash"`
	CreatedAt      time.Time `db:"created_at"`
}
