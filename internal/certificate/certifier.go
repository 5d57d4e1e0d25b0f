package certificate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

//go:generate mockgen -source=certifier.go -destination=certifier_mock.go -package=certificate
type Signer interface {
	Sign(ctx context.Context, payload []byte) ([]byte, error)
	PublicKey(ctx context.Context) ([]byte, error)
}

// Store keeps signed certificates.
type Store interface {
	SaveCertificate(ctx context.Context, cert Certificate) error
	ListCertificates(ctx context.Context, limit int) ([]Certificate, error)
}

// Recorder observes certification outcomes.
type Recorder interface {
	ObserveCertification(outcome string, d time.Duration)
}

const (
	OutcomeSigned           = "signed"
	OutcomeFailed           = "failed"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeRejected         = "rejected"
)

const reasonInsufficientData = "insufficient data"

type Option func(*Certifier)

func WithClock(now func() time.Time) Option {
	return func(c *Certifier) { c.now = now }
}

func WithDeviceModel(model string) Option {
	return func(c *Certifier) { c.deviceModel = model }
}

func WithStore(s Store) Option {
	return func(c *Certifier) { c.store = s }
}

func WithRecorder(r Recorder) Option {
	return func(c *Certifier) { c.recorder = r }
}

// Certifier runs the certification state machine
//
//	Unsigned -> Signing -> Signed | Failed
//
// with at most one request in flight. Failed only returns to Unsigned
// through Reset.
type Certifier struct {
	signer      Signer
	store       Store
	recorder    Recorder
	now         func() time.Time
	deviceModel string

	mu      sync.Mutex
	current Certificate
}

func NewCertifier(signer Signer, opts ...Option) *Certifier {
	c := &Certifier{
		signer:      signer,
		now:         time.Now,
		deviceModel: "unknown",
		current:     Certificate{State: StateUnsigned},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Current returns the latest certificate state.
func (c *Certifier) Current() Certificate {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Certify signs profile on behalf of id and waits for the outcome.
func (c *Certifier) Certify(ctx context.Context, profile risk.Profile, id identity.Identity) (Certificate, error) {
	cert, err := c.begin(profile)
	if err != nil {
		return cert, err
	}

	return c.sign(ctx, cert, profile, id)
}

// Start validates the request and signs in the background. Progress is
// observable through Current.
func (c *Certifier) Start(ctx context.Context, profile risk.Profile, id identity.Identity) error {
	cert, err := c.begin(profile)
	if err != nil {
		return err
	}

	go func() {
		if _, err := c.sign(context.WithoutCancel(ctx), cert, profile, id); err != nil {
			slog.Error("failed to certify", "id", cert.ID, "error", err)
		}
	}()

	return nil
}

// Reset clears a Failed or Signed certificate back to Unsigned.
func (c *Certifier) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.State == StateSigning {
		return ErrInFlight
	}

	c.current = Certificate{State: StateUnsigned}

	return nil
}

// History lists previously signed certificates, newest first.
func (c *Certifier) History(ctx context.Context, limit int) ([]Certificate, error) {
	if c.store == nil {
		return nil, nil
	}

	return c.store.ListCertificates(ctx, limit)
}

func (c *Certifier) begin(profile risk.Profile) (Certificate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if profile.Period != risk.PeriodAllTime {
		c.observe(OutcomeRejected, 0)
		return c.current, fmt.Errorf("%w: got %q", ErrFilteredProfile, profile.Period)
	}

	switch c.current.State {
	case StateSigning:
		c.observe(OutcomeRejected, 0)
		return c.current, ErrInFlight
	case StateFailed:
		c.observe(OutcomeRejected, 0)
		return c.current, ErrNotReset
	}

	if profile.TotalIncome <= 0 {
		c.current = Certificate{ID: uuid.New(), State: StateFailed, Reason: reasonInsufficientData}
		c.observe(OutcomeInsufficientData, 0)

		return c.current, ErrInsufficientData
	}

	c.current = Certificate{ID: uuid.New(), State: StateSigning}

	return c.current, nil
}

func (c *Certifier) sign(ctx context.Context, cert Certificate, profile risk.Profile, id identity.Identity) (Certificate, error) {
	start := time.Now()
	issuedAt := c.now()

	sig, err := c.signer.Sign(ctx, signingPayload(profile, id, issuedAt))
	if err != nil {
		return c.fail(cert, start, fmt.Errorf("%w: %w", ErrSigningFailure, err))
	}

	if len(sig) == 0 {
		return c.fail(cert, start, fmt.Errorf("%w: empty signature", ErrSigningFailure))
	}

	pub, err := c.signer.PublicKey(ctx)
	if err != nil {
		return c.fail(cert, start, fmt.Errorf("%w: reading public key: %w", ErrSigningFailure, err))
	}

	payload, err := json.Marshal(newDocument(profile, id, c.deviceModel, issuedAt, sig, pub))
	if err != nil {
		return c.fail(cert, start, fmt.Errorf("encoding certificate: %w", err))
	}

	cert.State = StateSigned
	cert.Signature = sig
	cert.PublicKey = pub
	cert.PayloadJSON = string(payload)
	cert.IssuedAt = issuedAt

	c.mu.Lock()
	c.current = cert
	c.observe(OutcomeSigned, time.Since(start))
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveCertificate(ctx, cert); err != nil {
			slog.Error("failed to save certificate", "id", cert.ID, "error", err)
		}
	}

	return cert, nil
}

func (c *Certifier) fail(cert Certificate, start time.Time, err error) (Certificate, error) {
	cert = Certificate{ID: cert.ID, State: StateFailed, Reason: err.Error()}

	c.mu.Lock()
	c.current = cert
	c.observe(OutcomeFailed, time.Since(start))
	c.mu.Unlock()

	return cert, err
}

func (c *Certifier) observe(outcome string, d time.Duration) {
	if c.recorder != nil {
		c.recorder.ObserveCertification(outcome, d)
	}
}
