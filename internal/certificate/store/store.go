package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveCertificate(ctx context.Context, cert certificate.Certificate) error {
	query := `
		INSERT INTO certificates (id, payload_json, signature, public_key, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, cert.ID, cert.PayloadJSON, cert.Signature, cert.PublicKey, cert.IssuedAt)
	if err != nil {
		return fmt.Errorf("saving certificate: %w", err)
	}

	return nil
}

func (s *Store) ListCertificates(ctx context.Context, limit int) ([]certificate.Certificate, error) {
	query := `
		SELECT id, payload_json, signature, public_key, issued_at
		FROM certificates
		ORDER BY issued_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing certificates: %w", err)
	}
	defer rows.Close()

	var certs []certificate.Certificate

	for rows.Next() {
		cert := certificate.Certificate{State: certificate.StateSigned}
		if err := rows.Scan(&cert.ID, &cert.PayloadJSON, &cert.Signature, &cert.PublicKey, &cert.IssuedAt); err != nil {
			return nil, fmt.Errorf("scanning certificate: %w", err)
		}

		certs = append(certs, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating certificates: %w", err)
	}

	return certs, nil
}
