package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID              int64           `db:"id"`
	ApplicationID   int64           `db:"application_id"`
	Amount          decimal.Decimal `db:"amount"`
	PaymentMethod   string          `db:"payment_method"`
	PhoneNumber     sql.NullString  `db:"phone_number"`
	Status          string          `db:"status"`
	MpesaCheckoutID sql.NullString  `db:"mpesa_checkout_id"`
	MpesaReceipt    sql.NullString  `db:"mpesa_receipt"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       sql.NullTime    `db:"updated_at"`
}
