package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dteller/pixelforge/internal/domain"
)

type fakeImageStore struct {
	image       *domain.Image
	createCalls int
	updateCalls int
	deleteCalls int
	gotFee      int64
}

func (f *fakeImageStore) CreateImage(ctx context.Context, img *domain.Image, fee int64) (*domain.Image, error) {
	f.createCalls++
	f.gotFee = fee
	img.ID = 11
	return img, nil
}

func (f *fakeImageStore) GetImage(ctx context.Context, id int64) (*domain.Image, error) {
	if f.image == nil || f.image.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.image, nil
}

func (f *fakeImageStore) UpdateImage(ctx context.Context, img *domain.Image) (*domain.Image, error) {
	f.updateCalls++
	return img, nil
}

func (f *fakeImageStore) DeleteImage(ctx context.Context, id int64) error {
	f.deleteCalls++
	return nil
}

func validInput() ImageInput {
	return ImageInput{
		Title:     "Sunset",
		Kind:      domain.KindRestore,
		PublicID:  "pixelforge/sunset",
		SecureURL: "https://cdn/sunset.png",
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(1, 1))
	assert.ErrorIs(t, Authorize(1, 2), domain.ErrUnauthorized)
}

func TestImageCreateChargesFee(t *testing.T) {
	st := &fakeImageStore{}
	svc := NewImages(st, testLogger())

	img, err := svc.Create(context.Background(), 3, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(3), img.OwnerID)
	assert.Equal(t, domain.CreditFee, st.gotFee)
}

func TestImageCreateRejectsInvalidInput(t *testing.T) {
	st := &fakeImageStore{}
	svc := NewImages(st, testLogger())

	in := validInput()
	in.Kind = "sharpen"
	_, err := svc.Create(context.Background(), 3, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, st.createCalls)
}

func TestImageCreateRejectsMismatchedConfig(t *testing.T) {
	st := &fakeImageStore{}
	svc := NewImages(st, testLogger())

	in := validInput()
	in.Kind = domain.KindRestore
	in.Config = &domain.TransformationConfig{Kind: domain.KindFill, Fill: &domain.FillConfig{AspectRatio: "1:1"}}
	_, err := svc.Create(context.Background(), 3, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, st.createCalls)
}

func TestImageUpdateDeniedForNonOwner(t *testing.T) {
	st := &fakeImageStore{image: &domain.Image{ID: 5, OwnerID: 2}}
	svc := NewImages(st, testLogger())

	_, err := svc.Update(context.Background(), 1, 5, validInput())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, st.updateCalls, "denied update must not reach storage")
}

func TestImageUpdateAllowedForOwner(t *testing.T) {
	st := &fakeImageStore{image: &domain.Image{ID: 5, OwnerID: 1}}
	svc := NewImages(st, testLogger())

	img, err := svc.Update(context.Background(), 1, 5, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(5), img.ID)
	assert.Equal(t, int64(1), img.OwnerID)
	assert.Equal(t, 1, st.updateCalls)
}

func TestImageDeleteDeniedForNonOwner(t *testing.T) {
	st := &fakeImageStore{image: &domain.Image{ID: 5, OwnerID: 2}}
	svc := NewImages(st, testLogger())

	err := svc.Delete(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, st.deleteCalls, "denied delete must not reach storage")
}

func TestImageDeleteMissing(t *testing.T) {
	st := &fakeImageStore{}
	svc := NewImages(st, testLogger())

	err := svc.Delete(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
