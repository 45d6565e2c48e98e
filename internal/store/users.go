package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dteller/pixelforge/internal/domain"
)

// adjustBalanceSQL recomputes the balance server-side from the stored value
// and refuses the write when a debit would overdraw. Two concurrent debits
// can therefore never jointly pass the check: the row lock serializes them
// and the second sees the first's result.
const adjustBalanceSQL = `
UPDATE users
SET credit_balance = credit_balance + $2, updated_at = now()
WHERE id = $1 AND credit_balance + $2 >= 0
RETURNING credit_balance`

// AdjustBalance applies delta to the user's credit balance and returns the
// new value. Returns domain.ErrNotFound for an unknown user and
// domain.ErrInsufficientCredits when a debit exceeds the balance; in both
// cases nothing is written.
func (s *Store) AdjustBalance(ctx context.Context, userID, delta int64) (int64, error) {
	return adjustBalance(ctx, s.db, userID, delta)
}

func adjustBalance(ctx context.Context, q querier, userID, delta int64) (int64, error) {
	var balance int64
	err := q.QueryRow(ctx, adjustBalanceSQL, userID, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("balance update failed: %w", err)
	}

	// Zero rows updated: either the user is missing or the guard refused
	// the debit. Disambiguate for the caller.
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("user lookup failed: %w", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientCredits
}

const userColumns = `id, auth_id, email, username, photo, first_name, last_name, plan_id, credit_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.AuthID, &u.Email, &u.Username, &u.Photo,
		&u.FirstName, &u.LastName, &u.PlanID, &u.CreditBalance,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("user scan failed: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a freshly synced account. The starting balance comes
// from the column default. Returns domain.ErrAlreadyExists on a replayed
// user.created event.
func (s *Store) CreateUser(ctx context.Context, p domain.UserProfile) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (auth_id, email, username, photo, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		p.AuthID, p.Email, p.Username, p.Photo, p.FirstName, p.LastName)

	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

// GetUser retrieves a user by internal id.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByAuthID resolves the auth provider's external identifier to the
// internal account.
func (s *Store) GetUserByAuthID(ctx context.Context, authID string) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth_id = $1`, authID))
}

// UpdateUserProfile applies a user.updated sync event. The credit balance
// is deliberately not touched here.
func (s *Store) UpdateUserProfile(ctx context.Context, p domain.UserProfile) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET email = $2, username = $3, photo = $4, first_name = $5, last_name = $6, updated_at = now()
		WHERE auth_id = $1
		RETURNING `+userColumns,
		p.AuthID, p.Email, p.Username, p.Photo, p.FirstName, p.LastName)
	return scanUser(row)
}

// DeleteUser removes the account. Owned images cascade; transaction rows
// survive with buyer_id nulled so the financial record is retained.
func (s *Store) DeleteUser(ctx context.Context, authID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE auth_id = $1`, authID)
	if err != nil {
		return fmt.Errorf("user delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
