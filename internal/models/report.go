package models

import "time"

type ReportRow struct {
	ID                int64      `db:"id" json:"id"`
	ApplicationNumber string     `db:"application_number" json:"application_number"`
	FullNames         string     `db:"full_names" json:"full_names"`
	Status            string     `db:"status" json:"status"`
	ApplicationType   string     `db:"application_type" json:"application_type"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at"`
	OfficerName       *string    `db:"officer_name" json:"officer_name"`
	GeneratedIDNumber *string    `db:"generated_id_number" json:"generated_id_number"`
}

type ReportStats struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	Approved   int `db:"approved" json:"approved"`
	Rejected   int `db:"rejected" json:"rejected"`
	Dispatched int `db:"dispatched" json:"dispatched"`
	Collected  int `db:"collected" json:"collected"`
}
