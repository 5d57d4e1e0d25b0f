package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// matchQuery resolves a raw statement description to the mapping whose
// pattern is the longest case-insensitive substring of it. Patterns are
// literal text, so % and _ carry no wildcard meaning. Newer mappings win ties.
const matchQuery = `
	SELECT counterparty
	FROM counterparty_mappings
	WHERE STRPOS(LOWER($1), LOWER(raw_pattern)) > 0
	ORDER BY LENGTH(raw_pattern) DESC, created_at DESC, id DESC
	LIMIT 1
`

const learnQuery = `
	INSERT INTO counterparty_mappings (raw_pattern, counterparty)
	VALUES ($1, $2)
`

// Store persists learned counterparty mappings in Postgres.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch returns an empty name when no pattern occurs in rawDescription.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	var name string

	switch err := s.db.QueryRowContext(ctx, matchQuery, rawDescription).Scan(&name); {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("matching counterparty for %q: %w", rawDescription, err)
	}

	return name, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, counterparty string) error {
	if _, err := s.db.ExecContext(ctx, learnQuery, rawPattern, counterparty); err != nil {
		return fmt.Errorf("learning counterparty %q for pattern %q: %w", counterparty, rawPattern, err)
	}

	return nil
}
