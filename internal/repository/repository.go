package repository

import (
	"context"

	"github.com/mhofstetter/homestorage/internal/domain"
)

// StateRepository loads and stores the whole application state as one blob.
// Load returns an empty, normalized state when nothing is stored yet.
type StateRepository interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, st *domain.State) error
}
