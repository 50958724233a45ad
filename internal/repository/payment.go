package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/workflow"
	"github.com/jmoiron/sqlx"
)

type PaymentRepository interface {
	Insert(ctx context.Context, payment *models.Payment) (int64, error)
	GetOne(ctx context.Context, id int64) (*models.Payment, bool, error)
	SetCheckoutID(ctx context.Context, id int64, checkoutID string) error
	MarkFailed(ctx context.Context, id int64) error
	// Confirm completes the payment holding checkoutID and puts its
	// application back in the review queue.
	Confirm(ctx context.Context, checkoutID, receipt string) (*PaymentConfirmation, bool, error)
	// FailByCheckoutID marks the payment holding checkoutID as failed.
	FailByCheckoutID(ctx context.Context, checkoutID string) (bool, error)
}

const (
	PaymentPendingStatus   = "pending"
	PaymentCompletedStatus = "completed"
	PaymentFailedStatus    = "failed"

	PaymentMethodMpesa = "mpesa"
	PaymentMethodCash  = "cash"
)

type PaymentConfirmation struct {
	PaymentID     int64
	ApplicationID int64
	// Resubmitted is false when the application had already moved past review.
	Resubmitted bool
}

const paymentColumns = `id, application_id, amount, payment_method, phone_number, status, mpesa_checkout_id, mpesa_receipt, created_at, updated_at`

type PaymentRepositoryImpl struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (repo *PaymentRepositoryImpl) Insert(ctx context.Context, payment *models.Payment) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	query := `
		INSERT INTO payments (application_id, amount, payment_method, phone_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		payment.ApplicationID,
		payment.Amount,
		payment.PaymentMethod,
		payment.PhoneNumber,
		PaymentPendingStatus,
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}

	return id, nil
}

func (repo *PaymentRepositoryImpl) GetOne(ctx context.Context, id int64) (*models.Payment, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var payment models.Payment

	err := repo.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &payment, true, err
}

func (repo *PaymentRepositoryImpl) SetCheckoutID(ctx context.Context, id int64, checkoutID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE payments SET mpesa_checkout_id = $1, updated_at = NOW() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, checkoutID, id)
	return err
}

func (repo *PaymentRepositoryImpl) MarkFailed(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, PaymentFailedStatus, id)
	return err
}

// Confirm is safe to repeat: a redelivered callback writes the same receipt
// and the resubmit guard leaves an already submitted application as it is.
func (repo *PaymentRepositoryImpl) Confirm(ctx context.Context, checkoutID, receipt string) (*PaymentConfirmation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var confirmation PaymentConfirmation
	found := true

	err := withTx(ctx, repo.db, nil, func(tx *sqlx.Tx) error {
		query := `
			UPDATE payments
			SET status = $1, mpesa_receipt = $2, updated_at = NOW()
			WHERE mpesa_checkout_id = $3
			RETURNING id, application_id`

		err := tx.QueryRowxContext(ctx, query, PaymentCompletedStatus, receipt, checkoutID).
			Scan(&confirmation.PaymentID, &confirmation.ApplicationID)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("complete payment: %w", err)
		}

		err = transition(ctx, tx, confirmation.ApplicationID, workflow.ActionResubmit)
		switch {
		case errors.Is(err, ErrNotFoundOrWrongState):
			return nil
		case err != nil:
			return err
		}

		confirmation.Resubmitted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	return &confirmation, true, nil
}

func (repo *PaymentRepositoryImpl) FailByCheckoutID(ctx context.Context, checkoutID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE mpesa_checkout_id = $2`

	res, err := repo.db.ExecContext(ctx, query, PaymentFailedStatus, checkoutID)
	if err != nil {
		return false, fmt.Errorf("fail payment: %w", err)
	}

	n, err := res.RowsAffected()
	return n > 0, err
}
