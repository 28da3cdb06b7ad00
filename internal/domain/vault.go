package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DigitalAsset is one encrypted item in a user's vault. The blob is encrypted
// client-side; the server only sees ciphertext and the declared size.
type DigitalAsset struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Beneficiary is a person designated to receive vault contents.
type Beneficiary struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Relation  string    `json:"relation,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAssetParams are the inputs for storing an encrypted asset.
type CreateAssetParams struct {
	UserID        uuid.UUID
	Name          string
	Category      string
	EncryptedBlob []byte
}

// AddBeneficiaryParams are the inputs for designating a beneficiary.
type AddBeneficiaryParams struct {
	UserID   uuid.UUID
	Email    string
	FullName string
	Relation string
}

// VaultService stores encrypted assets and beneficiary designations, enforcing
// the plan's entitlements before every write.
type VaultService interface {
	CreateAsset(ctx context.Context, params CreateAssetParams) (*DigitalAsset, error)
	AddBeneficiary(ctx context.Context, params AddBeneficiaryParams) (*Beneficiary, error)
}
