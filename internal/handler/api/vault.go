package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler"
)

// VaultHandler exposes encrypted asset storage and beneficiary designation.
type VaultHandler struct {
	vault  domain.VaultService
	logger *slog.Logger
}

// NewVaultHandler creates the vault handler.
func NewVaultHandler(vault domain.VaultService, logger *slog.Logger) *VaultHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VaultHandler{vault: vault, logger: logger}
}

type createAssetRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	// Data is the client-side encrypted blob, base64 encoded.
	Data string `json:"data" validate:"required,base64"`
}

// CreateAsset handles POST /vault/assets.
func (h *VaultHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req createAssetRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	blob, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("vault.create_asset", "data must be base64 encoded"))
		return
	}

	asset, err := h.vault.CreateAsset(r.Context(), domain.CreateAssetParams{
		UserID:        account.ID,
		Name:          req.Name,
		Category:      req.Category,
		EncryptedBlob: blob,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"asset": asset})
}

type addBeneficiaryRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Relation string `json:"relation"`
}

// AddBeneficiary handles POST /vault/beneficiaries.
func (h *VaultHandler) AddBeneficiary(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req addBeneficiaryRequest
	if err := decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	beneficiary, err := h.vault.AddBeneficiary(r.Context(), domain.AddBeneficiaryParams{
		UserID:   account.ID,
		Email:    req.Email,
		FullName: req.FullName,
		Relation: req.Relation,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"beneficiary": beneficiary})
}
