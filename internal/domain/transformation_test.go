package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformationConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TransformationConfig
		wantErr bool
	}{
		{
			name: "restore takes no payload",
			cfg:  TransformationConfig{Kind: KindRestore},
		},
		{
			name: "removeBackground takes no payload",
			cfg:  TransformationConfig{Kind: KindRemoveBackground},
		},
		{
			name: "fill with aspect ratio",
			cfg:  TransformationConfig{Kind: KindFill, Fill: &FillConfig{AspectRatio: "16:9"}},
		},
		{
			name:    "fill without payload",
			cfg:     TransformationConfig{Kind: KindFill},
			wantErr: true,
		},
		{
			name:    "fill with empty aspect ratio",
			cfg:     TransformationConfig{Kind: KindFill, Fill: &FillConfig{}},
			wantErr: true,
		},
		{
			name: "remove with prompt",
			cfg:  TransformationConfig{Kind: KindRemoveObject, Remove: &RemoveObjectConfig{Prompt: "lamp post"}},
		},
		{
			name:    "remove without prompt",
			cfg:     TransformationConfig{Kind: KindRemoveObject, Remove: &RemoveObjectConfig{}},
			wantErr: true,
		},
		{
			name: "recolor with prompt and target",
			cfg:  TransformationConfig{Kind: KindRecolorObject, Recolor: &RecolorConfig{Prompt: "car", To: "red"}},
		},
		{
			name:    "recolor missing target",
			cfg:     TransformationConfig{Kind: KindRecolorObject, Recolor: &RecolorConfig{Prompt: "car"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cfg:     TransformationConfig{Kind: "sharpen"},
			wantErr: true,
		},
		{
			name:    "variant not matching kind",
			cfg:     TransformationConfig{Kind: KindRestore, Fill: &FillConfig{AspectRatio: "1:1"}},
			wantErr: true,
		},
		{
			name: "two variants set",
			cfg: TransformationConfig{
				Kind:   KindFill,
				Fill:   &FillConfig{AspectRatio: "1:1"},
				Remove: &RemoveObjectConfig{Prompt: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation), "want ErrValidation, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransformationConfigUnmarshalValidates(t *testing.T) {
	var cfg TransformationConfig
	err := json.Unmarshal([]byte(`{"kind":"fill"}`), &cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	err = json.Unmarshal([]byte(`{"kind":"recolor","recolor":{"prompt":"bike","to":"blue"}}`), &cfg)
	require.NoError(t, err)
	assert.Equal(t, KindRecolorObject, cfg.Kind)
	assert.Equal(t, "blue", cfg.Recolor.To)
}

func TestTransformationKindValid(t *testing.T) {
	assert.True(t, KindRestore.Valid())
	assert.False(t, TransformationKind("").Valid())
	assert.False(t, TransformationKind("resize").Valid())
}
