package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dteller/pixelforge/internal/domain"
)

// ImageFilter restricts listings. Zero values mean "no restriction"; a
// non-nil empty PublicIDs slice matches nothing and callers are expected to
// short-circuit before getting here.
type ImageFilter struct {
	OwnerID   int64
	PublicIDs []string
}

func (f ImageFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.OwnerID != 0 {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if f.PublicIDs != nil {
		args = append(args, f.PublicIDs)
		conds = append(conds, fmt.Sprintf("public_id = ANY($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const imageColumns = `id, title, kind, public_id, secure_url, width, height, config, transformation_url, aspect_ratio, color, prompt, owner_id, created_at, updated_at`

func encodeConfig(c *domain.TransformationConfig) (any, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config encode failed: %w", err)
	}
	return b, nil
}

func decodeConfig(raw []byte, img *domain.Image) error {
	if len(raw) == 0 {
		return nil
	}
	img.Config = &domain.TransformationConfig{}
	return json.Unmarshal(raw, img.Config)
}

// CreateImage debits the owner's transformation fee and inserts the image
// as one unit. An insufficient balance rolls everything back and nothing
// is persisted.
func (s *Store) CreateImage(ctx context.Context, img *domain.Image, fee int64) (*domain.Image, error) {
	cfg, err := encodeConfig(img.Config)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if fee > 0 {
		if _, err := adjustBalance(ctx, tx, img.OwnerID, -fee); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO images (title, kind, public_id, secure_url, width, height, config, transformation_url, aspect_ratio, color, prompt, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		img.Title, img.Kind, img.PublicID, img.SecureURL, img.Width, img.Height,
		cfg, img.TransformationURL, img.AspectRatio, img.Color, img.Prompt, img.OwnerID,
	).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("image insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return img, nil
}

// GetImage fetches a single image with its author summary. Reads are not
// ownership-guarded.
func (s *Store) GetImage(ctx context.Context, id int64) (*domain.Image, error) {
	var img domain.Image
	var author domain.Author
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT i.id, i.title, i.kind, i.public_id, i.secure_url, i.width, i.height,
		       i.config, i.transformation_url, i.aspect_ratio, i.color, i.prompt,
		       i.owner_id, i.created_at, i.updated_at,
		       u.id, u.username, u.first_name, u.last_name
		FROM images i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1`,
		id,
	).Scan(&img.ID, &img.Title, &img.Kind, &img.PublicID, &img.SecureURL, &img.Width,
		&img.Height, &raw, &img.TransformationURL, &img.AspectRatio, &img.Color,
		&img.Prompt, &img.OwnerID, &img.CreatedAt, &img.UpdatedAt,
		&author.ID, &author.Username, &author.FirstName, &author.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("image lookup failed: %w", err)
	}
	if err := decodeConfig(raw, &img); err != nil {
		return nil, fmt.Errorf("config decode failed: %w", err)
	}
	img.Author = &author
	return &img, nil
}

// UpdateImage overwrites the mutable fields. Ownership must already have
// been checked by the caller.
func (s *Store) UpdateImage(ctx context.Context, img *domain.Image) (*domain.Image, error) {
	cfg, err := encodeConfig(img.Config)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		UPDATE images
		SET title = $2, kind = $3, public_id = $4, secure_url = $5, width = $6, height = $7,
		    config = $8, transformation_url = $9, aspect_ratio = $10, color = $11, prompt = $12,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		img.ID, img.Title, img.Kind, img.PublicID, img.SecureURL, img.Width, img.Height,
		cfg, img.TransformationURL, img.AspectRatio, img.Color, img.Prompt,
	).Scan(&img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("image update failed: %w", err)
	}
	return img, nil
}

// DeleteImage removes an image. Ownership must already have been checked.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("image delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListImages returns one page under the filter, most recently updated
// first with id as the tie-break so pages stay stable.
func (s *Store) ListImages(ctx context.Context, f ImageFilter, limit, offset int64) ([]domain.Image, error) {
	where, args := f.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM images%s ORDER BY updated_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		imageColumns, where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("image list failed: %w", err)
	}
	defer rows.Close()

	items := []domain.Image{}
	for rows.Next() {
		var img domain.Image
		var raw []byte
		if err := rows.Scan(&img.ID, &img.Title, &img.Kind, &img.PublicID, &img.SecureURL,
			&img.Width, &img.Height, &raw, &img.TransformationURL, &img.AspectRatio,
			&img.Color, &img.Prompt, &img.OwnerID, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, fmt.Errorf("image scan failed: %w", err)
		}
		if err := decodeConfig(raw, &img); err != nil {
			return nil, fmt.Errorf("config decode failed: %w", err)
		}
		items = append(items, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("image list failed: %w", err)
	}
	return items, nil
}

// CountImages counts rows under the same filter ListImages pages over.
func (s *Store) CountImages(ctx context.Context, f ImageFilter) (int64, error) {
	where, args := f.where()
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM images`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("image count failed: %w", err)
	}
	return count, nil
}
