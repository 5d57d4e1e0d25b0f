// Package statement parses bank statement CSV exports into ledger rows.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/ledgercert/internal/encoding"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

// Row is one statement line. Amount is never negative; Kind carries the
// direction.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        transaction.Kind
}

// Parser reads CSV exports and auto-detects the layout by matching column
// headers against its profiles.
type Parser struct {
	profiles []Profile
	loc      *time.Location
}

// NewParser interprets statement dates as calendar days in loc.
func NewParser(loc *time.Location, profiles []Profile) *Parser {
	if loc == nil {
		loc = time.UTC
	}

	return &Parser{profiles: profiles, loc: loc}
}

var delimiters = []rune{';', ','}

func (p *Parser) Parse(r io.Reader) ([]Row, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, comma := range delimiters {
		rows, err := readCSV(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := p.detectProfile(rows)
		if profile == nil {
			continue
		}

		slog.Debug("detected statement format", "profile", profile.Name, "charset", charset)

		return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	}

	return nil, ErrUnknownFormat
}

func readCSV(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
func (p *Parser) detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range p.profiles {
			if matchesProfile(&p.profiles[i], cols) {
				return &p.profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts rows using the matched profile. headerIdx is the 0-based
// index of the header in the file; errors report 1-based line numbers.
func (p *Parser) parseRows(profile *Profile, cols colIndex, rows [][]string, headerIdx int) ([]Row, error) {
	dateIdx := cols[profile.DateCol]
	descIdx := cols[profile.DescCol]

	var out []Row

	for i, row := range rows {
		rowNum := headerIdx + i + 2

		date, ok := p.parseDate(profile, cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, kind, ok := rowAmount(profile, cols, row)
		if !ok {
			continue
		}

		out = append(out, Row{Date: date, Description: desc, Amount: amount, Kind: kind})
	}

	return out, nil
}

// parseDate returns false for empty cells or unparseable values such as
// footer rows.
func (p *Parser) parseDate(profile *Profile, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range profile.DateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Kind, bool) {
	switch p.AmountMode {
	case amountSingle:
		return singleAmount(row, cols[p.AmountCol], p.Numbers)
	case amountSplit:
		return splitAmount(row, cols[p.DebitCol], cols[p.CreditCol], p.Numbers)
	}

	return decimal.Zero, "", false
}

func singleAmount(row []string, idx int, f numberFormat) (decimal.Decimal, transaction.Kind, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	amount, err := parseAmount(s, f)
	if err != nil || amount.IsZero() {
		return decimal.Zero, "", false
	}

	if amount.IsNegative() {
		return amount.Neg(), transaction.KindExpense, true
	}

	return amount, transaction.KindIncome, true
}

func splitAmount(row []string, debitIdx, creditIdx int, f numberFormat) (decimal.Decimal, transaction.Kind, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		amount, err := parseAmount(s, f)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.KindExpense, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		amount, err := parseAmount(s, f)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.KindIncome, true
		}
	}

	return decimal.Zero, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
