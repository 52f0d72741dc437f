package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mhofstetter/homestorage/internal/domain"
)

// MemoryRepository keeps the state blob in memory. Round-trips through JSON
// so it exercises the same encoding path as the postgres store.
type MemoryRepository struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.blob == nil {
		return domain.NewState(), nil
	}
	st := &domain.State{}
	if err := json.Unmarshal(r.blob, st); err != nil {
		return nil, err
	}
	st.Normalize()
	return st, nil
}

func (r *MemoryRepository) Save(_ context.Context, st *domain.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.blob = data
	r.mu.Unlock()
	return nil
}
