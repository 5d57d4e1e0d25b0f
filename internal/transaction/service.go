package transaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	BeginImport(ctx context.Context) (ImportTx, error)
}

type ImportTx interface {
	ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Service owns the transaction store and tells subscribers when its
// contents change.
type Service struct {
	repo Repository

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		subs: make(map[int]chan struct{}),
	}
}

type CreateParams struct {
	Amount       decimal.Decimal
	Kind         Kind
	OccurredAt   time.Time
	Category     string
	Counterparty string
	Verified     bool
	SourceHash   string
}

type ListFilter struct {
	Kind      *Kind
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := paramsToTransaction(params)
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.notify()

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// All returns every stored transaction, oldest first.
func (s *Service) All(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{})
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.notify()

	return nil
}

type ImportResult struct {
	Imported   []*Transaction
	Duplicates []CreateParams
}

// ImportBatch stores params atomically, skipping entries whose source hash is
// already known to the store or repeated within the batch.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := paramsToTransaction(p).Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.ExistingHashes(ctx, sourceHashes(params))
	if err != nil {
		return nil, fmt.Errorf("find existing hashes: %w", err)
	}

	seen := make(map[string]struct{}, len(params))

	var (
		fresh      []*Transaction
		duplicates []CreateParams
	)

	for _, p := range params {
		if p.SourceHash != "" {
			_, known := existing[p.SourceHash]
			_, repeated := seen[p.SourceHash]

			if known || repeated {
				duplicates = append(duplicates, p)
				continue
			}

			seen[p.SourceHash] = struct{}{}
		}

		fresh = append(fresh, paramsToTransaction(p))
	}

	if len(fresh) > 0 {
		if err := itx.CreateTransactions(ctx, fresh); err != nil {
			return nil, fmt.Errorf("create transactions: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	if len(fresh) > 0 {
		s.notify()
	}

	return &ImportResult{Imported: fresh, Duplicates: duplicates}, nil
}

// Subscribe returns a channel that receives a signal after every change to
// the store. Signals coalesce: a slow reader sees at most one pending signal.
// The returned func unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Service) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func sourceHashes(params []CreateParams) []string {
	hashes := make([]string, 0, len(params))
	for _, p := range params {
		if p.SourceHash != "" {
			hashes = append(hashes, p.SourceHash)
		}
	}

	return hashes
}

func paramsToTransaction(p CreateParams) *Transaction {
	counterparty := p.Counterparty
	if counterparty == "" {
		counterparty = DefaultCounterparty
	}

	return &Transaction{
		Amount:       p.Amount,
		Kind:         p.Kind,
		OccurredAt:   p.OccurredAt,
		Category:     p.Category,
		Counterparty: counterparty,
		Verified:     p.Verified,
		SourceHash:   p.SourceHash,
	}
}
