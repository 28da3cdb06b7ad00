package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

func vaultFixture(t *testing.T, repo *mockQuerier, features domain.PlanFeatures) *VaultService {
	t.Helper()
	return NewVaultService(repo, limitsFixture(t, repo, features), testLogger())
}

func TestVaultService_CreateAsset(t *testing.T) {
	userID := uuid.New()
	blob := []byte("ciphertext")

	t.Run("stores the blob and echoes its size", func(t *testing.T) {
		repo := &mockQuerier{
			CreateDigitalAssetFunc: func(ctx context.Context, arg repository.CreateDigitalAssetParams) (repository.DigitalAsset, error) {
				return repository.DigitalAsset{
					ID:            arg.ID,
					UserID:        arg.UserID,
					Name:          arg.Name,
					Category:      arg.Category,
					SizeBytes:     arg.SizeBytes,
					EncryptedBlob: arg.EncryptedBlob,
				}, nil
			},
		}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxAssets: 10, MaxStorageMB: 100, MaxFileSizeMB: 10})

		asset, err := svc.CreateAsset(context.Background(), domain.CreateAssetParams{
			UserID:        userID,
			Name:          "will.pdf",
			Category:      "legal",
			EncryptedBlob: blob,
		})
		require.NoError(t, err)
		assert.Equal(t, userID, asset.UserID)
		assert.Equal(t, int64(len(blob)), asset.SizeBytes)
	})

	t.Run("asset limit reached", func(t *testing.T) {
		repo := &mockQuerier{
			CountAssetsForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 10, nil },
		}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxAssets: 10, MaxStorageMB: 100, MaxFileSizeMB: 10})

		_, err := svc.CreateAsset(context.Background(), domain.CreateAssetParams{
			UserID:        userID,
			Name:          "will.pdf",
			EncryptedBlob: blob,
		})
		require.Error(t, err)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
		assert.Equal(t, -1, callIndex(repo.CallLog, "CreateDigitalAsset"))
	})

	t.Run("empty blob is invalid", func(t *testing.T) {
		repo := &mockQuerier{}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxAssets: 10, MaxStorageMB: 100, MaxFileSizeMB: 10})

		_, err := svc.CreateAsset(context.Background(), domain.CreateAssetParams{
			UserID: userID,
			Name:   "will.pdf",
		})
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}

func TestVaultService_AddBeneficiary(t *testing.T) {
	userID := uuid.New()

	t.Run("lowercases the email", func(t *testing.T) {
		repo := &mockQuerier{
			CreateBeneficiaryFunc: func(ctx context.Context, arg repository.CreateBeneficiaryParams) (repository.Beneficiary, error) {
				return repository.Beneficiary{
					ID:       arg.ID,
					UserID:   arg.UserID,
					Email:    arg.Email,
					FullName: arg.FullName,
					Relation: arg.Relation,
				}, nil
			},
		}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxBeneficiaries: 5})

		b, err := svc.AddBeneficiary(context.Background(), domain.AddBeneficiaryParams{
			UserID:   userID,
			Email:    "  Ana@Example.COM ",
			FullName: "Ana Torres",
			Relation: "sister",
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", b.Email)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := &mockQuerier{
			CreateBeneficiaryFunc: func(ctx context.Context, arg repository.CreateBeneficiaryParams) (repository.Beneficiary, error) {
				return repository.Beneficiary{}, &pgconn.PgError{Code: "23505"}
			},
		}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxBeneficiaries: 5})

		_, err := svc.AddBeneficiary(context.Background(), domain.AddBeneficiaryParams{
			UserID:   userID,
			Email:    "ana@example.com",
			FullName: "Ana Torres",
		})
		require.Error(t, err)
		assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	})

	t.Run("beneficiary limit reached", func(t *testing.T) {
		repo := &mockQuerier{
			CountBeneficiariesForUserFunc: func(ctx context.Context, id pgtype.UUID) (int64, error) { return 5, nil },
		}
		svc := vaultFixture(t, repo, domain.PlanFeatures{MaxBeneficiaries: 5})

		_, err := svc.AddBeneficiary(context.Background(), domain.AddBeneficiaryParams{
			UserID:   userID,
			Email:    "ana@example.com",
			FullName: "Ana Torres",
		})
		require.Error(t, err)
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	})
}
