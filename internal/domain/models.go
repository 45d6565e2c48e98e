package domain

import "time"

// User is an account synced from the auth provider. CreditBalance is only
// ever written through the ledger update in the store; it can never go
// negative.
type User struct {
	ID            int64     `json:"id"`
	AuthID        string    `json:"auth_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Photo         string    `json:"photo"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	PlanID        int64     `json:"plan_id"`
	CreditBalance int64     `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserProfile carries the mutable profile fields delivered by the auth
// provider's user.created/user.updated events.
type UserProfile struct {
	AuthID    string `json:"auth_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Photo     string `json:"photo"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Transaction is the immutable record of one settled payment. Exactly one
// row exists per ExternalPaymentID, and exactly one ledger credit of
// CreditsGranted was applied to BuyerID when the row was committed.
type Transaction struct {
	ID                int64     `json:"id"`
	ExternalPaymentID string    `json:"external_payment_id"`
	Amount            float64   `json:"amount"`
	Plan              string    `json:"plan"`
	CreditsGranted    int64     `json:"credits_granted"`
	BuyerID           int64     `json:"buyer_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaymentEvent is the payload delivered by the payment processor's webhook.
// Delivery is at-least-once; ExternalPaymentID is the dedup key.
type PaymentEvent struct {
	ExternalPaymentID string  `json:"external_payment_id"`
	Amount            float64 `json:"amount"`
	Plan              string  `json:"plan"`
	CreditsGranted    int64   `json:"credits_granted"`
	BuyerID           int64   `json:"buyer_id"`
}

// Image is a stored transformation result. The binary lives at the CDN;
// we keep the metadata and the typed per-kind config.
type Image struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	Kind              TransformationKind    `json:"kind"`
	PublicID          string                `json:"public_id"`
	SecureURL         string                `json:"secure_url"`
	Width             int32                 `json:"width,omitempty"`
	Height            int32                 `json:"height,omitempty"`
	Config            *TransformationConfig `json:"config,omitempty"`
	TransformationURL string                `json:"transformation_url,omitempty"`
	AspectRatio       string                `json:"aspect_ratio,omitempty"`
	Color             string                `json:"color,omitempty"`
	Prompt            string                `json:"prompt,omitempty"`
	OwnerID           int64                 `json:"owner_id"`
	Author            *Author               `json:"author,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Author is the owner summary attached to single-image reads.
type Author struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ImagePage is one page of a listing plus its pagination metadata.
// TotalPages is computed against the same filter as Items.
type ImagePage struct {
	Items      []Image `json:"items"`
	TotalPages int64   `json:"total_pages"`
	TotalCount int64   `json:"total_count"`
}
