package service

import (
	"context"
	"fmt"

	"github.com/dteller/pixelforge/internal/domain"
	"github.com/dteller/pixelforge/internal/logging"
	"github.com/dteller/pixelforge/internal/search"
	"github.com/dteller/pixelforge/internal/store"
)

type ListStore interface {
	ListImages(ctx context.Context, f store.ImageFilter, limit, offset int64) ([]domain.Image, error)
	CountImages(ctx context.Context, f store.ImageFilter) (int64, error)
}

// ListParams selects one page. OwnerID scopes to one user's images; Search
// forwards an expression to the external search collaborator. Owner scope
// wins when both are set.
type ListParams struct {
	Page    int64
	Limit   int64
	Search  string
	OwnerID int64
}

// Listing merges the external search result set with the stored records
// and computes pagination metadata.
type Listing struct {
	store  ListStore
	search search.Searcher
	log    logging.Logger
}

func NewListing(st ListStore, se search.Searcher, log logging.Logger) *Listing {
	return &Listing{store: st, search: se, log: log}
}

// List returns one page. TotalPages is computed under the same filter as
// the items, and an out-of-range page yields empty items rather than an
// error.
func (s *Listing) List(ctx context.Context, p ListParams) (*domain.ImagePage, error) {
	if p.Page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if p.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be > 0", domain.ErrValidation)
	}

	filter := store.ImageFilter{OwnerID: p.OwnerID}
	if p.OwnerID == 0 && p.Search != "" {
		ids, err := s.search.PublicIDs(ctx, p.Search)
		if err != nil {
			return nil, fmt.Errorf("search lookup failed: %w", err)
		}
		// Nothing matched upstream: the store holds no corresponding
		// rows either, skip the query entirely.
		if len(ids) == 0 {
			return &domain.ImagePage{Items: []domain.Image{}}, nil
		}
		filter.PublicIDs = ids
	}

	count, err := s.store.CountImages(ctx, filter)
	if err != nil {
		return nil, err
	}

	offset := (p.Page - 1) * p.Limit
	items, err := s.store.ListImages(ctx, filter, p.Limit, offset)
	if err != nil {
		return nil, err
	}

	return &domain.ImagePage{
		Items:      items,
		TotalPages: (count + p.Limit - 1) / p.Limit,
		TotalCount: count,
	}, nil
}
