package domain

import (
	"encoding/json"
	"fmt"
)

// TransformationKind identifies which transformation produced an image.
type TransformationKind string

const (
	KindRestore          TransformationKind = "restore"
	KindFill             TransformationKind = "fill"
	KindRemoveObject     TransformationKind = "remove"
	KindRecolorObject    TransformationKind = "recolor"
	KindRemoveBackground TransformationKind = "removeBackground"
)

// CreditFee is what one transformation debits from the owner's balance.
const CreditFee int64 = 1

// Valid reports whether k names a known transformation.
func (k TransformationKind) Valid() bool {
	switch k {
	case KindRestore, KindFill, KindRemoveObject, KindRecolorObject, KindRemoveBackground:
		return true
	}
	return false
}

// FillConfig fills generative background to a target aspect ratio.
type FillConfig struct {
	AspectRatio string `json:"aspect_ratio"`
}

// RemoveObjectConfig removes the object described by Prompt.
type RemoveObjectConfig struct {
	Prompt       string `json:"prompt"`
	RemoveShadow bool   `json:"remove_shadow,omitempty"`
}

// RecolorConfig recolors the object described by Prompt to the target color.
type RecolorConfig struct {
	Prompt   string `json:"prompt"`
	To       string `json:"to"`
	Multiple bool   `json:"multiple,omitempty"`
}

// TransformationConfig is a variant type keyed by Kind. Exactly the variant
// matching Kind may be set; restore and removeBackground carry no payload.
// It replaces the untyped JSON blob the CDN widget emits, so bad payloads
// fail at write time instead of render time.
type TransformationConfig struct {
	Kind    TransformationKind  `json:"kind"`
	Fill    *FillConfig         `json:"fill,omitempty"`
	Remove  *RemoveObjectConfig `json:"remove,omitempty"`
	Recolor *RecolorConfig      `json:"recolor,omitempty"`
}

// Validate checks the kind tag and that the matching variant (and only it)
// is populated with its required fields.
func (c *TransformationConfig) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown transformation kind %q", ErrValidation, c.Kind)
	}

	set := 0
	if c.Fill != nil {
		set++
	}
	if c.Remove != nil {
		set++
	}
	if c.Recolor != nil {
		set++
	}

	switch c.Kind {
	case KindRestore, KindRemoveBackground:
		if set != 0 {
			return fmt.Errorf("%w: %s takes no config payload", ErrValidation, c.Kind)
		}
	case KindFill:
		if c.Fill == nil || set != 1 {
			return fmt.Errorf("%w: fill requires exactly the fill payload", ErrValidation)
		}
		if c.Fill.AspectRatio == "" {
			return fmt.Errorf("%w: fill requires aspect_ratio", ErrValidation)
		}
	case KindRemoveObject:
		if c.Remove == nil || set != 1 {
			return fmt.Errorf("%w: remove requires exactly the remove payload", ErrValidation)
		}
		if c.Remove.Prompt == "" {
			return fmt.Errorf("%w: remove requires prompt", ErrValidation)
		}
	case KindRecolorObject:
		if c.Recolor == nil || set != 1 {
			return fmt.Errorf("%w: recolor requires exactly the recolor payload", ErrValidation)
		}
		if c.Recolor.Prompt == "" || c.Recolor.To == "" {
			return fmt.Errorf("%w: recolor requires prompt and to", ErrValidation)
		}
	}
	return nil
}

// UnmarshalJSON decodes and validates in one step so no invalid config
// object exists past the decode boundary.
func (c *TransformationConfig) UnmarshalJSON(data []byte) error {
	type alias TransformationConfig
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = TransformationConfig(a)
	return c.Validate()
}
