package service

import (
	"context"
	"fmt"

	"github.com/dteller/pixelforge/internal/domain"
	"github.com/dteller/pixelforge/internal/logging"
)

type UserStore interface {
	CreateUser(ctx context.Context, p domain.UserProfile) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, p domain.UserProfile) (*domain.User, error)
	DeleteUser(ctx context.Context, authID string) error
}

// Users applies account-sync events from the auth provider and resolves
// external identities to internal accounts.
type Users struct {
	store UserStore
	log   logging.Logger
}

func NewUsers(store UserStore, log logging.Logger) *Users {
	return &Users{store: store, log: log}
}

func validateProfile(p domain.UserProfile) error {
	if p.AuthID == "" || p.Email == "" || p.Username == "" {
		return fmt.Errorf("%w: auth_id, email and username are required", domain.ErrValidation)
	}
	return nil
}

// SyncCreated handles user.created. The starting credit grant comes from
// the store default.
func (s *Users) SyncCreated(ctx context.Context, p domain.UserProfile) (*domain.User, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user synced", "user_id", u.ID, "auth_id", u.AuthID)
	return u, nil
}

// SyncUpdated handles user.updated; the balance is untouched.
func (s *Users) SyncUpdated(ctx context.Context, p domain.UserProfile) (*domain.User, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	return s.store.UpdateUserProfile(ctx, p)
}

// SyncDeleted handles user.deleted. Images cascade away, transaction rows
// keep their audit trail with the buyer reference nulled.
func (s *Users) SyncDeleted(ctx context.Context, authID string) error {
	if authID == "" {
		return fmt.Errorf("%w: auth_id is required", domain.ErrValidation)
	}
	if err := s.store.DeleteUser(ctx, authID); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "auth_id", authID)
	return nil
}

// Resolve maps a verified external identity to the internal account.
func (s *Users) Resolve(ctx context.Context, authID string) (*domain.User, error) {
	return s.store.GetUserByAuthID(ctx, authID)
}

// Profile returns the account with its current balance.
func (s *Users) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}
