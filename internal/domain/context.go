package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	accountContextKey contextKey = iota
	requestIDContextKey
)

// NewContextWithAccount returns a new context with the account attached.
func NewContextWithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext retrieves the account from context. Returns nil if no
// account is present.
func AccountFromContext(ctx context.Context) *Account {
	account, _ := ctx.Value(accountContextKey).(*Account)
	return account
}

// UserIDFromContext retrieves the authenticated user's id from context.
// Returns uuid.Nil if no account is present.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if account := AccountFromContext(ctx); account != nil {
		return account.ID
	}
	return uuid.Nil
}

// IsAuthenticated reports whether there is an account in context.
func IsAuthenticated(ctx context.Context) bool {
	return AccountFromContext(ctx) != nil
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context. Returns an
// empty string if none is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
