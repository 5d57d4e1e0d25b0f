package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetIdentity(ctx context.Context) (*identity.Identity, error) {
	query := `SELECT name, occupation, description, updated_at FROM identity WHERE id = 1`

	var id identity.Identity

	err := s.db.QueryRowContext(ctx, query).Scan(&id.Name, &id.Occupation, &id.Description, &id.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, fmt.Errorf("getting identity: %w", err)
	}

	return &id, nil
}

func (s *Store) SaveIdentity(ctx context.Context, id *identity.Identity) error {
	query := `
		INSERT INTO identity (id, name, occupation, description, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    occupation = EXCLUDED.occupation,
		    description = EXCLUDED.description,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, id.Name, id.Occupation, id.Description).Scan(&id.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	return nil
}
