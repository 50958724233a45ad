package models

import "time"

type Document struct {
	ID            int64     `db:"id" json:"-"`
	ApplicationID int64     `db:"application_id" json:"-"`
	DocumentType  string    `db:"document_type" json:"document_type"`
	FilePath      string    `db:"file_path" json:"file_path"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
}
