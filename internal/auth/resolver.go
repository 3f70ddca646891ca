package auth

import (
	"context"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
	"github.com/sstanqq/web-task-manager/internal/domain/models"
)

// UserLookup is the slice of the identity directory the resolver needs.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionResolver turns an inbound bearer token into a concrete user.
// Every protected operation passes through Resolve before touching data.
type SessionResolver struct {
	tokens *TokenIssuer
	users  UserLookup
}

func NewSessionResolver(tokens *TokenIssuer, users UserLookup) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users}
}

// Resolve validates the token and looks up its subject. A token whose
// subject no longer exists fails with ErrInvalidToken, not a not-found
// error: callers must not be able to tell a bad token from a stale one.
func (r *SessionResolver) Resolve(ctx context.Context, tokenStr string) (*models.User, error) {
	subject, err := r.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	user, err := r.users.GetUserByUsername(ctx, subject)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	return user, nil
}
