// Package users provides the repository for persisted account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and fills in the generated ID and CreatedAt.
	// A uniqueness-constraint violation is reported as common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail returns the user with the given email or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsernameOrEmail returns a user matching either value, or
	// common.ErrorNotFound. Used by the signup pre-check.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
}
