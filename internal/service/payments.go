package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dteller/pixelforge/internal/domain"
	"github.com/dteller/pixelforge/internal/logging"
)

type PaymentStore interface {
	RecordPayment(ctx context.Context, ev domain.PaymentEvent) (*domain.Transaction, error)
}

// Recorder converts payment-completion events into transaction rows and
// balance credits, exactly once per external payment id.
type Recorder struct {
	store PaymentStore
	log   logging.Logger
}

func NewRecorder(store PaymentStore, log logging.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record validates and persists one payment event. A replayed event comes
// back as domain.ErrDuplicatePayment with no ledger effect; callers treat
// it as success.
func (r *Recorder) Record(ctx context.Context, ev domain.PaymentEvent) (*domain.Transaction, error) {
	if ev.ExternalPaymentID == "" {
		return nil, fmt.Errorf("%w: external payment id is required", domain.ErrValidation)
	}
	if ev.BuyerID <= 0 {
		return nil, fmt.Errorf("%w: buyer id is required", domain.ErrValidation)
	}
	if ev.CreditsGranted < 0 {
		return nil, fmt.Errorf("%w: credits granted must not be negative", domain.ErrValidation)
	}

	t, err := r.store.RecordPayment(ctx, ev)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			r.log.Info(ctx, "duplicate payment event ignored", "external_payment_id", ev.ExternalPaymentID)
		}
		return nil, err
	}

	r.log.Info(ctx, "payment recorded",
		"external_payment_id", t.ExternalPaymentID,
		"buyer_id", t.BuyerID,
		"credits_granted", t.CreditsGranted)
	return t, nil
}
