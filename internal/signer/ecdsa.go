package signer

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ECDSA signs SHA-256 digests with a P-256 key, producing ASN.1 DER
// signatures (SHA256withECDSA).
type ECDSA struct {
	keys KeyStore

	mu  sync.Mutex
	key *ecdsa.PrivateKey
	pub []byte
}

var _ Signer = (*ECDSA)(nil)

func NewECDSA(keys KeyStore) *ECDSA {
	return &ECDSA{keys: keys}
}

func (s *ECDSA) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	key, _, err := s.ensureKey(ctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)

	sig, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("signing payload: %w", err)
	}

	if len(sig) == 0 {
		return nil, ErrEmptySignature
	}

	return sig, nil
}

func (s *ECDSA) PublicKey(ctx context.Context) ([]byte, error) {
	_, pub, err := s.ensureKey(ctx)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), pub...), nil
}

// ensureKey loads the key from the store, generating and saving one if the
// store has none.
func (s *ECDSA) ensureKey(ctx context.Context) (*ecdsa.PrivateKey, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, s.pub, nil
	}

	key, err := s.keys.Load(ctx)
	if errors.Is(err, ErrKeyNotFound) {
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("generating signing key: %w", err)
		}

		if err := s.keys.Save(ctx, key); err != nil {
			return nil, nil, fmt.Errorf("saving signing key: %w", err)
		}

		slog.Info("created signing identity")
	} else if err != nil {
		return nil, nil, fmt.Errorf("loading signing key: %w", err)
	}

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding public key: %w", err)
	}

	s.key = key
	s.pub = pub

	return key, pub, nil
}
