// Package certificate turns a risk profile into a signed, portable credit
// certificate.
package certificate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrSigningFailure   = errors.New("signing failure")
	ErrInFlight         = errors.New("certification already in progress")
	ErrNotReset         = errors.New("previous certification failed, reset before retrying")
	ErrFilteredProfile  = errors.New("certificates are issued from the all time profile only")
)

type State string

const (
	StateUnsigned State = "unsigned"
	StateSigning  State = "signing"
	StateSigned   State = "signed"
	StateFailed   State = "failed"
)

// Certificate is an immutable snapshot of one certification request. The
// Certifier replaces it on every transition.
type Certificate struct {
	ID    uuid.UUID
	State State
	// Reason is set only in StateFailed.
	Reason string

	Signature   []byte
	PublicKey   []byte
	PayloadJSON string
	IssuedAt    time.Time
}

func (c Certificate) IsSigned() bool {
	return c.State == StateSigned
}
