package repositories

import (
	"context"

	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
)

// UserRepository defines user read operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error)
}
