package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iablee/iablee/internal/auth"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

func TestUserService_Register(t *testing.T) {
	t.Run("hashes the password and lowercases the email", func(t *testing.T) {
		var stored repository.CreateUserParams
		repo := &mockQuerier{
			CreateUserFunc: func(ctx context.Context, arg repository.CreateUserParams) (repository.User, error) {
				stored = arg
				return repository.User{ID: arg.ID, Email: arg.Email, PasswordHash: arg.PasswordHash, FullName: arg.FullName}, nil
			},
		}
		svc := NewUserService(repo, testLogger())

		account, err := svc.Register(context.Background(), " Ana@Example.COM ", "correct-horse-battery", "Ana Gomez")
		require.NoError(t, err)

		assert.Equal(t, "ana@example.com", account.Email)
		assert.NotEqual(t, "correct-horse-battery", stored.PasswordHash)
		assert.NoError(t, auth.VerifyPassword("correct-horse-battery", stored.PasswordHash))
	})

	t.Run("short password", func(t *testing.T) {
		svc := NewUserService(&mockQuerier{}, testLogger())

		_, err := svc.Register(context.Background(), "ana@example.com", "short", "Ana")
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	repo := &mockQuerier{
		GetUserByEmailFunc: func(ctx context.Context, email string) (repository.User, error) {
			if email != "ana@example.com" {
				return repository.User{}, pgx.ErrNoRows
			}
			return repository.User{
				ID:           pgUUID(uuid.New()),
				Email:        email,
				PasswordHash: hash,
			}, nil
		},
	}
	svc := NewUserService(repo, testLogger())

	t.Run("valid credentials", func(t *testing.T) {
		account, err := svc.Authenticate(context.Background(), "ana@example.com", "correct-horse-battery")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", account.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ana@example.com", "wrong-password")
		require.Error(t, err)
		assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	})

	t.Run("unknown email reports the same error as a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse-battery")
		require.Error(t, err)
		assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	})
}

func TestUserService_Sessions(t *testing.T) {
	userID := uuid.New()
	sessions := map[string]repository.Session{}

	repo := &mockQuerier{
		CreateSessionFunc: func(ctx context.Context, arg repository.CreateSessionParams) (repository.Session, error) {
			s := repository.Session{Token: arg.Token, Data: arg.Data, ExpiresAt: arg.ExpiresAt}
			sessions[arg.Token] = s
			return s, nil
		},
		GetSessionByTokenFunc: func(ctx context.Context, token string) (repository.Session, error) {
			s, ok := sessions[token]
			if !ok {
				return repository.Session{}, pgx.ErrNoRows
			}
			return s, nil
		},
		GetUserByIDFunc: func(ctx context.Context, id pgtype.UUID) (repository.User, error) {
			return repository.User{ID: id, Email: "ana@example.com"}, nil
		},
	}
	svc := NewUserService(repo, testLogger())

	token, err := svc.CreateSession(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	account, err := svc.GetUserBySessionToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, account.ID)

	t.Run("tokens are unique", func(t *testing.T) {
		other, err := svc.CreateSession(context.Background(), userID)
		require.NoError(t, err)
		assert.NotEqual(t, token, other)
	})

	t.Run("expired session", func(t *testing.T) {
		data, err := json.Marshal(sessionData{UserID: userID})
		require.NoError(t, err)
		sessions["stale"] = repository.Session{
			Token:     "stale",
			Data:      data,
			ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(-time.Hour), Valid: true},
		}

		_, err = svc.GetUserBySessionToken(context.Background(), "stale")
		require.Error(t, err)
		assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.GetUserBySessionToken(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	})
}

func TestUserService_PurgeExpiredSessions(t *testing.T) {
	repo := &mockQuerier{
		DeleteExpiredSessionsFunc: func(ctx context.Context) (int64, error) { return 3, nil },
	}
	svc := NewUserService(repo, testLogger())

	deleted, err := svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
