package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CurrentUser returns the caller, or false when the request is anonymous.
func CurrentUser(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}

// UserID returns the caller's id or uuid.Nil. Services reject uuid.Nil as unauthenticated.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := CurrentUser(ctx)
	return id.UserID
}
