package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dteller/pixelforge/internal/domain"
)

// RecordPayment turns a payment-completion event into a durable transaction
// row and credits the buyer, inside one database transaction. Either both
// effects commit or neither does, so a transaction row without its credit
// cannot exist.
//
// The unique index on external_payment_id is the idempotency boundary for
// webhook replay: a duplicate insert fails with 23505 before any credit is
// attempted and the call returns domain.ErrDuplicatePayment.
func (s *Store) RecordPayment(ctx context.Context, ev domain.PaymentEvent) (*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	t := &domain.Transaction{
		ExternalPaymentID: ev.ExternalPaymentID,
		Amount:            ev.Amount,
		Plan:              ev.Plan,
		CreditsGranted:    ev.CreditsGranted,
		BuyerID:           ev.BuyerID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (external_payment_id, amount, plan, credits_granted, buyer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		ev.ExternalPaymentID, ev.Amount, ev.Plan, ev.CreditsGranted, ev.BuyerID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicatePayment
		}
		return nil, fmt.Errorf("transaction insert failed: %w", err)
	}

	if _, err := adjustBalance(ctx, tx, ev.BuyerID, ev.CreditsGranted); err != nil {
		// Missing buyer or storage failure: roll back the row too, the
		// processor will redeliver and the whole unit retries.
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return t, nil
}

// GetTransactionByExternalID fetches the audit record for one payment.
func (s *Store) GetTransactionByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	var t domain.Transaction
	var buyerID *int64
	err := s.db.QueryRow(ctx, `
		SELECT id, external_payment_id, amount, plan, credits_granted, buyer_id, created_at
		FROM transactions WHERE external_payment_id = $1`,
		externalID,
	).Scan(&t.ID, &t.ExternalPaymentID, &t.Amount, &t.Plan, &t.CreditsGranted, &buyerID, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transaction lookup failed: %w", err)
	}
	if buyerID != nil {
		t.BuyerID = *buyerID
	}
	return &t, nil
}
