package models

import "time"

type Officer struct {
	ID             int64     `db:"id" json:"id"`
	IDNumber       string    `db:"id_number" json:"id_number"`
	Email          string    `db:"email" json:"email"`
	PhoneNumber    string    `db:"phone_number" json:"phone_number"`
	FullName       string    `db:"full_name" json:"full_name"`
	Station        string    `db:"station" json:"station"`
	Constituency   string    `db:"constituency" json:"constituency"`
	Status         string    `db:"status" json:"status"`
	HashedPassword string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
