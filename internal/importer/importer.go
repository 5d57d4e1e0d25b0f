// Package importer turns bank statement exports into verified ledger
// entries.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/ledgercert/internal/importer/statement"
)

type Bank string

const (
	BankCGD Bank = "cgd"
	BankUPI Bank = "upi"
)

const (
	Category            = "Statement Import"
	DefaultCounterparty = "Bank Statement"
)

type Importer interface {
	Parse(r io.Reader) ([]statement.Row, error)
}
