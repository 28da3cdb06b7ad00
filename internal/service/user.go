package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iablee/iablee/internal/auth"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/repository"
)

// SessionDuration is how long a login session stays valid.
const SessionDuration = 30 * 24 * time.Hour

// sessionData is the JSON payload stored with each session token.
type sessionData struct {
	UserID uuid.UUID `json:"user_id"`
}

// UserService implements registration, login and session management.
type UserService struct {
	repo   repository.Querier
	logger *slog.Logger
}

var _ domain.UserService = (*UserService)(nil)

// NewUserService creates the account service.
func NewUserService(repo repository.Querier, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With(slog.String("service", "user")),
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*domain.Account, error) {
	const op = "user.register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.Invalid(op, "email is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.Invalid(op, err.Error())
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to hash password")
	}

	row, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		ID:           pgUUID(uuid.New()),
		Email:        email,
		PasswordHash: hash,
		FullName:     pgText(fullName),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.Conflict(op, "an account with this email already exists")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", fromPgUUID(row.ID).String()))

	return mapUserRow(row), nil
}

// Authenticate verifies credentials and returns the account. Unknown emails
// and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	const op = "user.authenticate"

	email = strings.ToLower(strings.TrimSpace(email))

	row, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid email or password")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get user")
	}

	if err := auth.VerifyPassword(password, row.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.Unauthorized(op, "invalid email or password")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to verify password")
	}

	return mapUserRow(row), nil
}

// CreateSession issues an opaque session token for the user.
func (s *UserService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "user.create_session"

	token, err := generateSessionToken()
	if err != nil {
		return "", domain.WrapError(err, domain.EINTERNAL, op, "failed to generate session token")
	}

	data, err := json.Marshal(sessionData{UserID: userID})
	if err != nil {
		return "", domain.WrapError(err, domain.EINTERNAL, op, "failed to encode session data")
	}

	if _, err := s.repo.CreateSession(ctx, repository.CreateSessionParams{
		Token:     token,
		Data:      data,
		ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(SessionDuration), Valid: true},
	}); err != nil {
		return "", domain.WrapError(err, domain.EINTERNAL, op, "failed to store session")
	}

	return token, nil
}

// GetUserBySessionToken resolves a session token to its account. Expired
// sessions look the same as missing ones.
func (s *UserService) GetUserBySessionToken(ctx context.Context, token string) (*domain.Account, error) {
	const op = "user.get_by_session"

	session, err := s.repo.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid or expired session")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get session")
	}
	if session.ExpiresAt.Valid && session.ExpiresAt.Time.Before(time.Now()) {
		return nil, domain.Unauthorized(op, "invalid or expired session")
	}

	var data sessionData
	if err := json.Unmarshal(session.Data, &data); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "malformed session data")
	}

	row, err := s.repo.GetUserByID(ctx, pgUUID(data.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid or expired session")
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to get user")
	}

	return mapUserRow(row), nil
}

// DeleteSession logs the session out. Deleting a missing token is not an
// error.
func (s *UserService) DeleteSession(ctx context.Context, token string) error {
	const op = "user.delete_session"

	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to delete session")
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	const op = "user.purge_expired_sessions"

	deleted, err := s.repo.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, domain.WrapError(err, domain.EINTERNAL, op, "failed to purge sessions")
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "expired sessions purged", slog.Int64("count", deleted))
	}
	return deleted, nil
}

func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func mapUserRow(row repository.User) *domain.Account {
	return &domain.Account{
		ID:        fromPgUUID(row.ID),
		Email:     row.Email,
		FullName:  row.FullName.String,
		CreatedAt: row.CreatedAt.Time,
	}
}
