package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iablee/iablee/internal/billing"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

func limitsFixture(t *testing.T, repo *mockQuerier, features domain.PlanFeatures) *LimitService {
	t.Helper()

	featureJSON, err := json.Marshal(features)
	require.NoError(t, err)

	repo.GetPlanFunc = func(ctx context.Context, id string) (repository.BillingPlan, error) {
		return repository.BillingPlan{
			ID:          id,
			Name:        id,
			Currency:    "USD",
			AmountCents: 0,
			Features:    featureJSON,
			IsActive:    true,
		}, nil
	}

	billingSvc := NewBillingService(repo, testRegistry(t, billing.NewMockGateway(domain.ProviderStripe)), testLogger())
	return NewLimitService(repo, billingSvc, testLogger())
}

func TestLimitService_CanCreateAsset(t *testing.T) {
	userID := uuid.New()

	t.Run("under the limit", func(t *testing.T) {
		repo := &mockQuerier{
			CountAssetsForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 4, nil },
		}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxAssets: 5})
		assert.NoError(t, svc.CanCreateAsset(context.Background(), userID))
	})

	t.Run("at the limit", func(t *testing.T) {
		repo := &mockQuerier{
			CountAssetsForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 5, nil },
		}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxAssets: 5})

		err := svc.CanCreateAsset(context.Background(), userID)
		require.Error(t, err)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	})

	t.Run("unlimited plan skips the count", func(t *testing.T) {
		repo := &mockQuerier{
			CountAssetsForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) {
				t.Fatal("count should not run for unlimited plans")
				return 0, nil
			},
		}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxAssets: domain.UnlimitedLimit})
		assert.NoError(t, svc.CanCreateAsset(context.Background(), userID))
	})
}

func TestLimitService_CanCreateBeneficiary(t *testing.T) {
	userID := uuid.New()
	repo := &mockQuerier{
		CountBeneficiariesForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 3, nil },
	}
	svc := limitsFixture(t, repo, domain.PlanFeatures{MaxBeneficiaries: 3})

	err := svc.CanCreateBeneficiary(context.Background(), userID)
	require.Error(t, err)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
}

func TestLimitService_CanStoreBytes(t *testing.T) {
	userID := uuid.New()
	const mb = 1024 * 1024

	t.Run("single file over the per-file cap", func(t *testing.T) {
		repo := &mockQuerier{}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxStorageMB: 100, MaxFileSizeMB: 10})

		err := svc.CanStoreBytes(context.Background(), userID, 11*mb)
		require.Error(t, err)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	})

	t.Run("total storage exceeded", func(t *testing.T) {
		repo := &mockQuerier{
			SumAssetBytesForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 95 * mb, nil },
		}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxStorageMB: 100, MaxFileSizeMB: 10})

		err := svc.CanStoreBytes(context.Background(), userID, 6*mb)
		require.Error(t, err)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	})

	t.Run("fits", func(t *testing.T) {
		repo := &mockQuerier{
			SumAssetBytesForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 90 * mb, nil },
		}
		svc := limitsFixture(t, repo, domain.PlanFeatures{MaxStorageMB: 100, MaxFileSizeMB: 10})
		assert.NoError(t, svc.CanStoreBytes(context.Background(), userID, 6*mb))
	})
}

func TestLimitService_GetUsage(t *testing.T) {
	userID := uuid.New()
	repo := &mockQuerier{
		CountAssetsForUserFunc:        func(ctx context.Context, id pgtype.UUID) (int64, error) { return 7, nil },
		CountBeneficiariesForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 2, nil },
		SumAssetBytesForUserFunc:      func(ctx context.Context, id pgtype.UUID) (int64, error) { return 123456, nil },
	}
	svc := limitsFixture(t, repo, domain.PlanFeatures{MaxAssets: 50, MaxBeneficiaries: 5, MaxStorageMB: 1024})

	usage, err := svc.GetUsage(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, domain.FreePlanID, usage.PlanID)
	assert.Equal(t, int64(7), usage.Assets)
	assert.Equal(t, 50, usage.MaxAssets)
	assert.Equal(t, int64(2), usage.Beneficiaries)
	assert.Equal(t, int64(123456), usage.StorageBytes)
	assert.Equal(t, 1024, usage.MaxStorageMB)
}
