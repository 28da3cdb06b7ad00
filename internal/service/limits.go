package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

// LimitService enforces plan entitlements. Limits come from the user's
// current plan; domain.UnlimitedLimit disables a check.
type LimitService struct {
	repo    repository.Querier
	billing domain.BillingService
	logger  *slog.Logger
}

var _ domain.LimitService = (*LimitService)(nil)

// NewLimitService creates the entitlement checker.
func NewLimitService(repo repository.Querier, billing domain.BillingService, logger *slog.Logger) *LimitService {
	return &LimitService{
		repo:    repo,
		billing: billing,
		logger:  logger.With(slog.String("service", "limits")),
	}
}

// planFor resolves the user's effective plan. Subscriptions in a non-active
// state fall back to the free plan's limits.
func (s *LimitService) planFor(ctx context.Context, userID uuid.UUID) (*domain.PlanDefinition, error) {
	sub, err := s.billing.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	planID := sub.PlanID
	if !sub.Status.IsActive() {
		planID = domain.FreePlanID
	}
	return s.billing.GetPlan(ctx, planID)
}

// CanCreateAsset reports whether the user may store another asset.
func (s *LimitService) CanCreateAsset(ctx context.Context, userID uuid.UUID) error {
	const op = "limits.can_create_asset"

	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return err
	}
	if plan.Features.MaxAssets == domain.UnlimitedLimit {
		return nil
	}

	count, err := s.repo.CountAssetsForUser(ctx, pgUUID(userID))
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to count assets")
	}
	if count >= int64(plan.Features.MaxAssets) {
		return domain.Errorf(domain.EFORBIDDEN, op, "plan limit of %d assets reached", plan.Features.MaxAssets)
	}
	return nil
}

// CanCreateBeneficiary reports whether the user may add another beneficiary.
func (s *LimitService) CanCreateBeneficiary(ctx context.Context, userID uuid.UUID) error {
	const op = "limits.can_create_beneficiary"

	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return err
	}
	if plan.Features.MaxBeneficiaries == domain.UnlimitedLimit {
		return nil
	}

	count, err := s.repo.CountBeneficiariesForUser(ctx, pgUUID(userID))
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to count beneficiaries")
	}
	if count >= int64(plan.Features.MaxBeneficiaries) {
		return domain.Errorf(domain.EFORBIDDEN, op, "plan limit of %d beneficiaries reached", plan.Features.MaxBeneficiaries)
	}
	return nil
}

// CanStoreBytes reports whether storing sizeBytes more would exceed the
// plan's storage allowance.
func (s *LimitService) CanStoreBytes(ctx context.Context, userID uuid.UUID, sizeBytes int64) error {
	const op = "limits.can_store_bytes"

	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return err
	}

	if plan.Features.MaxFileSizeMB != domain.UnlimitedLimit && sizeBytes > int64(plan.Features.MaxFileSizeMB)*1024*1024 {
		return domain.Errorf(domain.EFORBIDDEN, op, "file exceeds plan limit of %d MB", plan.Features.MaxFileSizeMB)
	}

	if plan.Features.MaxStorageMB == domain.UnlimitedLimit {
		return nil
	}

	used, err := s.repo.SumAssetBytesForUser(ctx, pgUUID(userID))
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to sum storage")
	}
	if used+sizeBytes > int64(plan.Features.MaxStorageMB)*1024*1024 {
		return domain.Errorf(domain.EFORBIDDEN, op, "plan storage limit of %d MB reached", plan.Features.MaxStorageMB)
	}
	return nil
}

// GetUsage returns current consumption against the effective plan's limits.
func (s *LimitService) GetUsage(ctx context.Context, userID uuid.UUID) (*domain.PlanUsage, error) {
	const op = "limits.get_usage"

	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	assets, err := s.repo.CountAssetsForUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to count assets")
	}
	beneficiaries, err := s.repo.CountBeneficiariesForUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to count beneficiaries")
	}
	storage, err := s.repo.SumAssetBytesForUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to sum storage")
	}

	return &domain.PlanUsage{
		PlanID:           plan.ID,
		Assets:           assets,
		MaxAssets:        plan.Features.MaxAssets,
		Beneficiaries:    beneficiaries,
		MaxBeneficiaries: plan.Features.MaxBeneficiaries,
		StorageBytes:     storage,
		MaxStorageMB:     plan.Features.MaxStorageMB,
	}, nil
}
