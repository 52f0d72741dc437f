package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mhofstetter/homestorage/internal/domain"
)

// stateID keys the single aggregate row; the schema allows more than one
// household per database even though the app only ever uses "default".
const stateID = "default"

const schema = `
CREATE TABLE IF NOT EXISTS app_state (
    id         TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// StateRepository persists the application state as a JSONB blob in the
// app_state table, one row per household.
type StateRepository struct {
	db *DB
	id string
}

func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db, id: stateID}
}

// EnsureSchema creates the app_state table when missing.
func (r *StateRepository) EnsureSchema(ctx context.Context) error {
	release, err := r.db.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("could not create app_state table: %w", err)
	}
	return nil
}

func (r *StateRepository) Load(ctx context.Context) (*domain.State, error) {
	release, err := r.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var data []byte
	err = r.db.QueryRowxContext(ctx, `SELECT data FROM app_state WHERE id = $1`, r.id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load state: %w", err)
	}

	st := &domain.State{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("could not decode state blob: %w", err)
	}
	st.Normalize()
	return st, nil
}

func (r *StateRepository) Save(ctx context.Context, st *domain.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("could not encode state: %w", err)
	}

	release, err := r.db.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_state (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		r.id, data)
	if err != nil {
		return fmt.Errorf("could not save state: %w", err)
	}
	return nil
}
