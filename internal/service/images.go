package service

import (
	"context"
	"fmt"

	"github.com/dteller/pixelforge/internal/domain"
	"github.com/dteller/pixelforge/internal/logging"
)

type ImageStore interface {
	CreateImage(ctx context.Context, img *domain.Image, fee int64) (*domain.Image, error)
	GetImage(ctx context.Context, id int64) (*domain.Image, error)
	UpdateImage(ctx context.Context, img *domain.Image) (*domain.Image, error)
	DeleteImage(ctx context.Context, id int64) error
}

// ImageInput is the payload for creating or replacing an image record.
type ImageInput struct {
	Title             string                       `json:"title"`
	Kind              domain.TransformationKind    `json:"kind"`
	PublicID          string                       `json:"public_id"`
	SecureURL         string                       `json:"secure_url"`
	Width             int32                        `json:"width"`
	Height            int32                        `json:"height"`
	Config            *domain.TransformationConfig `json:"config"`
	TransformationURL string                       `json:"transformation_url"`
	AspectRatio       string                       `json:"aspect_ratio"`
	Color             string                       `json:"color"`
	Prompt            string                       `json:"prompt"`
}

func (in *ImageInput) validate() error {
	if in.Title == "" || in.PublicID == "" || in.SecureURL == "" {
		return fmt.Errorf("%w: title, public_id and secure_url are required", domain.ErrValidation)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown transformation kind %q", domain.ErrValidation, in.Kind)
	}
	if in.Config != nil {
		if err := in.Config.Validate(); err != nil {
			return err
		}
		if in.Config.Kind != in.Kind {
			return fmt.Errorf("%w: config kind %q does not match image kind %q",
				domain.ErrValidation, in.Config.Kind, in.Kind)
		}
	}
	return nil
}

func (in *ImageInput) toImage(ownerID int64) *domain.Image {
	return &domain.Image{
		Title:             in.Title,
		Kind:              in.Kind,
		PublicID:          in.PublicID,
		SecureURL:         in.SecureURL,
		Width:             in.Width,
		Height:            in.Height,
		Config:            in.Config,
		TransformationURL: in.TransformationURL,
		AspectRatio:       in.AspectRatio,
		Color:             in.Color,
		Prompt:            in.Prompt,
		OwnerID:           ownerID,
	}
}

// Images guards image mutations behind ownership checks and charges the
// transformation fee on creation.
type Images struct {
	store ImageStore
	log   logging.Logger
}

func NewImages(store ImageStore, log logging.Logger) *Images {
	return &Images{store: store, log: log}
}

// Create validates the input, debits the transformation fee from the actor
// and persists the image; debit and insert commit together.
func (s *Images) Create(ctx context.Context, actorID int64, in ImageInput) (*domain.Image, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	img, err := s.store.CreateImage(ctx, in.toImage(actorID), domain.CreditFee)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "image created", "image_id", img.ID, "owner_id", actorID, "kind", img.Kind)
	return img, nil
}

// Get returns a single image; no ownership restriction on reads.
func (s *Images) Get(ctx context.Context, id int64) (*domain.Image, error) {
	return s.store.GetImage(ctx, id)
}

// Update replaces the image record after the ownership check passes.
func (s *Images) Update(ctx context.Context, actorID, imageID int64, in ImageInput) (*domain.Image, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actorID, existing.OwnerID); err != nil {
		return nil, err
	}

	img := in.toImage(existing.OwnerID)
	img.ID = imageID
	updated, err := s.store.UpdateImage(ctx, img)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "image updated", "image_id", imageID, "owner_id", actorID)
	return updated, nil
}

// Delete removes the image after the ownership check passes. No refund:
// the transformation already happened.
func (s *Images) Delete(ctx context.Context, actorID, imageID int64) error {
	existing, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if err := Authorize(actorID, existing.OwnerID); err != nil {
		return err
	}

	if err := s.store.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	s.log.Info(ctx, "image deleted", "image_id", imageID, "owner_id", actorID)
	return nil
}
