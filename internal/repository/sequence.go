package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counters live in number_sequences, one row per key (APP2026, ID2026, ...).
// The first allocation for a key seeds the counter from the highest number
// already stored in column, so rows written before the table existed are
// never handed out again. Later allocations are a plain increment under the
// row lock the upsert takes.
const nextSequenceQuery = `
	INSERT INTO number_sequences (prefix, last_value)
	VALUES (
		$1::text,
		(
			SELECT COALESCE(MAX(CAST(SUBSTRING(%[1]s FROM length($1::text) + 1) AS BIGINT)), 0)
			FROM applications
			WHERE %[1]s ~ ('^' || $1::text || '[0-9]+$')
		) + 1
	)
	ON CONFLICT (prefix) DO UPDATE
		SET last_value = number_sequences.last_value + 1, updated_at = NOW()
	RETURNING last_value`

// sequence columns an allocation may be seeded from.
const (
	applicationNumberColumn = "application_number"
	generatedIDNumberColumn = "generated_id_number"
)

func nextSequence(ctx context.Context, tx *sqlx.Tx, key, column string) (int64, error) {
	var value int64

	err := tx.GetContext(ctx, &value, fmt.Sprintf(nextSequenceQuery, column), key)
	if err != nil {
		return 0, fmt.Errorf("allocate %s: %w", key, err)
	}

	return value, nil
}
