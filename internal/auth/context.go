package auth

import (
	"context"

	"github.com/google/uuid"
)

// GetUserIDFromContext retrieves the authenticated user id from the request
// context. Returns the id and true if found, otherwise uuid.Nil and false.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
