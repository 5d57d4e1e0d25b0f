package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

type Response struct {
	ID           int64            `json:"id"`
	Amount       decimal.Decimal  `json:"amount"`
	Kind         transaction.Kind `json:"kind"`
	OccurredAt   int64            `json:"occurred_at"`
	Category     string           `json:"category"`
	Counterparty string           `json:"counterparty"`
	Verified     bool             `json:"verified"`
	SourceHash   string           `json:"source_hash,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:           tx.ID,
		Amount:       tx.Amount,
		Kind:         tx.Kind,
		OccurredAt:   tx.OccurredAtMillis(),
		Category:     tx.Category,
		Counterparty: tx.Counterparty,
		Verified:     tx.Verified,
		SourceHash:   tx.SourceHash,
		CreatedAt:    tx.CreatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
