package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

// VaultService stores encrypted assets and beneficiaries. Every write runs
// the plan's entitlement checks first.
type VaultService struct {
	repo   repository.Querier
	limits domain.LimitService
	logger *slog.Logger
}

var _ domain.VaultService = (*VaultService)(nil)

// NewVaultService creates the vault service.
func NewVaultService(repo repository.Querier, limits domain.LimitService, logger *slog.Logger) *VaultService {
	return &VaultService{
		repo:   repo,
		limits: limits,
		logger: logger.With(slog.String("service", "vault")),
	}
}

// CreateAsset stores an encrypted blob after checking the asset count and
// storage limits of the user's plan.
func (s *VaultService) CreateAsset(ctx context.Context, params domain.CreateAssetParams) (*domain.DigitalAsset, error) {
	const op = "vault.create_asset"

	if params.Name == "" {
		return nil, domain.Invalid(op, "asset name is required")
	}
	if len(params.EncryptedBlob) == 0 {
		return nil, domain.Invalid(op, "asset data is required")
	}

	if err := s.limits.CanCreateAsset(ctx, params.UserID); err != nil {
		return nil, err
	}
	size := int64(len(params.EncryptedBlob))
	if err := s.limits.CanStoreBytes(ctx, params.UserID, size); err != nil {
		return nil, err
	}

	row, err := s.repo.CreateDigitalAsset(ctx, repository.CreateDigitalAssetParams{
		ID:            pgUUID(uuid.New()),
		UserID:        pgUUID(params.UserID),
		Name:          params.Name,
		Category:      pgText(params.Category),
		SizeBytes:     size,
		EncryptedBlob: params.EncryptedBlob,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store asset")
	}

	s.logger.InfoContext(ctx, "asset stored",
		slog.String("user_id", params.UserID.String()),
		slog.Int64("size_bytes", size))

	return mapAssetRow(row), nil
}

// AddBeneficiary designates a beneficiary after checking the plan's
// beneficiary limit. Each email may appear once per user.
func (s *VaultService) AddBeneficiary(ctx context.Context, params domain.AddBeneficiaryParams) (*domain.Beneficiary, error) {
	const op = "vault.add_beneficiary"

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.FullName == "" {
		return nil, domain.Invalid(op, "beneficiary email and full name are required")
	}

	if err := s.limits.CanCreateBeneficiary(ctx, params.UserID); err != nil {
		return nil, err
	}

	row, err := s.repo.CreateBeneficiary(ctx, repository.CreateBeneficiaryParams{
		ID:       pgUUID(uuid.New()),
		UserID:   pgUUID(params.UserID),
		Email:    email,
		FullName: params.FullName,
		Relation: pgText(params.Relation),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.Conflict(op, "this beneficiary is already designated")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to store beneficiary")
	}

	s.logger.InfoContext(ctx, "beneficiary added",
		slog.String("user_id", params.UserID.String()))

	return mapBeneficiaryRow(row), nil
}

func mapAssetRow(row repository.DigitalAsset) *domain.DigitalAsset {
	return &domain.DigitalAsset{
		ID:        fromPgUUID(row.ID),
		UserID:    fromPgUUID(row.UserID),
		Name:      row.Name,
		Category:  row.Category.String,
		SizeBytes: row.SizeBytes,
		CreatedAt: row.CreatedAt.Time,
	}
}

func mapBeneficiaryRow(row repository.Beneficiary) *domain.Beneficiary {
	return &domain.Beneficiary{
		ID:        fromPgUUID(row.ID),
		UserID:    fromPgUUID(row.UserID),
		Email:     row.Email,
		FullName:  row.FullName,
		Relation:  row.Relation.String,
		CreatedAt: row.CreatedAt.Time,
	}
}
