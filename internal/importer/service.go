package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ledgercert/internal/importer/statement"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

// Resolver maps a raw statement description to a learned counterparty.
type Resolver interface {
	Resolve(ctx context.Context, rawDescription string) (string, error)
}

type Service struct {
	importers map[Bank]Importer
	resolver  Resolver
}

// NewService parses statement dates in loc, the zone risk months are
// bucketed in. resolver may be nil.
func NewService(loc *time.Location, resolver Resolver) *Service {
	return &Service{
		importers: map[Bank]Importer{
			BankCGD: statement.NewParser(loc, statement.CGDProfiles),
			BankUPI: statement.NewParser(loc, statement.UPIProfiles),
		},
		resolver: resolver,
	}
}

// Import parses a statement into transaction params. Statement rows are
// bank-attested, so every entry is marked verified.
func (s *Service) Import(ctx context.Context, bank Bank, r io.Reader) ([]transaction.CreateParams, error) {
	imp, ok := s.importers[bank]
	if !ok {
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}

	rows, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(rows))
	params := make([]transaction.CreateParams, 0, len(rows))

	for _, row := range rows {
		key := rowKey(row)
		seen[key]++

		params = append(params, transaction.CreateParams{
			Amount:       row.Amount,
			Kind:         row.Kind,
			OccurredAt:   row.Date,
			Category:     Category,
			Counterparty: s.counterparty(ctx, row.Description),
			Verified:     true,
			SourceHash:   sourceHash(key, seen[key]),
		})
	}

	return params, nil
}

func (s *Service) counterparty(ctx context.Context, raw string) string {
	if s.resolver == nil {
		return DefaultCounterparty
	}

	name, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		slog.Warn("failed to resolve counterparty", "raw_description", raw, "error", err)
		return DefaultCounterparty
	}

	if name == "" {
		return DefaultCounterparty
	}

	return name
}

func rowKey(row statement.Row) string {
	return strings.Join([]string{
		row.Date.Format(time.DateOnly),
		row.Description,
		row.Amount.String(),
		string(row.Kind),
	}, "|")
}

// sourceHash identifies the n-th identical row of a statement, so re-importing
// the same file is idempotent while genuine repeats within it are kept.
func sourceHash(key string, n int) string {
	sum := sha256.Sum256([]byte(key + "#" + strconv.Itoa(n)))
	return hex.EncodeToString(sum[:])
}
