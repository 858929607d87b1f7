package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/auth"
)

// getUserIDFromContext extracts the authenticated user id placed in the
// context by the JWT middleware.
func getUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
