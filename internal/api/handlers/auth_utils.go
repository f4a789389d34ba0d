package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kestrel-tetris/kestrel-backend/internal/api/middleware"
)

// GetUserIDFromContext retrieves the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	return middleware.GetUserIDFromContext(ctx)
}

// ExtractUserIDFromContext retrieves the authenticated user ID from the
// request context, returning an error if AuthMiddleware never set one.
func ExtractUserIDFromContext(r *http.Request) (string, error) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("no authenticated user ID in request context")
	}
	return userID, nil
} 