package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("transaction not found")
	ErrMalformed = errors.New("malformed transaction")
)

// Kind carries the sign of a transaction; amounts are never negative.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

const DefaultCounterparty = "Unknown"

// Transaction is a finalized ledger entry produced by ingestion. The risk
// engine only reads it.
type Transaction struct {
	ID           int64
	Amount       decimal.Decimal
	Kind         Kind
	OccurredAt   time.Time
	Category     string
	Counterparty string
	Verified     bool
	SourceHash   string
	CreatedAt    time.Time
}

// OccurredAtMillis returns the occurrence time as epoch milliseconds.
func (t *Transaction) OccurredAtMillis() int64 {
	return t.OccurredAt.UnixMilli()
}

func (t *Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

// AmountScale is the number of decimal places the store keeps.
const AmountScale = 2

// Validate reports a violation of the transaction invariants. The returned
// error wraps ErrMalformed.
func (t *Transaction) Validate() error {
	switch t.Kind {
	case KindIncome, KindExpense:
	default:
		return fmt.Errorf("%w: transaction %d has unknown kind %q", ErrMalformed, t.ID, t.Kind)
	}

	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: transaction %d has negative amount %s", ErrMalformed, t.ID, t.Amount)
	}

	if !t.Amount.Equal(t.Amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: transaction %d amount %s has more than %d decimal places",
			ErrMalformed, t.ID, t.Amount, AmountScale)
	}

	return nil
}

// FromMillis converts epoch milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
