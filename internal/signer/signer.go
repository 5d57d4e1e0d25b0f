// Package signer provides the device signing identity used to certify risk
// reports.
//
// A signing key is created on first use and then reused for the lifetime of
// the key store. Losing or regenerating the key makes every certificate
// issued under the old public key unverifiable against the new one; there is
// no rotation or migration path.
package signer

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound    = errors.New("signing key not found")
	ErrEmptySignature = errors.New("signer produced an empty signature")
)

// Signer signs arbitrary payloads with a stable key pair.
type Signer interface {
	// Sign returns a signature over payload. It never returns an empty
	// signature without an error.
	Sign(ctx context.Context, payload []byte) ([]byte, error)
	// PublicKey returns the DER encoded SubjectPublicKeyInfo of the signing
	// key. Repeated calls return the same bytes.
	PublicKey(ctx context.Context) ([]byte, error)
}
