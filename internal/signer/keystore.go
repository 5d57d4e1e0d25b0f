package signer

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// KeyStore persists the private signing key.
type KeyStore interface {
	// Load returns ErrKeyNotFound when no key has been saved yet.
	Load(ctx context.Context) (*ecdsa.PrivateKey, error)
	Save(ctx context.Context, key *ecdsa.PrivateKey) error
}

const pemBlockType = "PRIVATE KEY"

// FileKeyStore keeps the key as a PKCS#8 PEM file readable only by its owner.
type FileKeyStore struct {
	path string
}

func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

func (s *FileKeyStore) Load(_ context.Context) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockType {
		return nil, fmt.Errorf("key file %s: no %s block", s.path, pemBlockType)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing key file: %w", err)
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key file %s: not an ECDSA key", s.path)
	}

	return key, nil
}

// Save refuses to overwrite an existing key file.
func (s *FileKeyStore) Save(_ context.Context, key *ecdsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("encoding key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}

	if err := pem.Encode(f, &pem.Block{Type: pemBlockType, Bytes: der}); err != nil {
		f.Close()
		return fmt.Errorf("writing key file: %w", err)
	}

	return f.Close()
}

// MemoryKeyStore keeps the key for the lifetime of the process.
type MemoryKeyStore struct {
	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

func (s *MemoryKeyStore) Load(_ context.Context) (*ecdsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrKeyNotFound
	}

	return s.key, nil
}

func (s *MemoryKeyStore) Save(_ context.Context, key *ecdsa.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = key

	return nil
}
