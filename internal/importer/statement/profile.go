package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// numberFormat is the thousands/decimal separator convention of a statement.
type numberFormat int

const (
	// numberEuropean is "1.234,56".
	numberEuropean numberFormat = iota
	// numberPlain is "1,234.56".
	numberPlain
)

// Profile describes the column layout of one bank's CSV export.
type Profile struct {
	Name        string
	DateCol     string
	DateLayouts []string
	DescCol     string
	AmountMode  amountMode
	AmountCol   string // amountSingle
	DebitCol    string // amountSplit
	CreditCol   string // amountSplit
	Numbers     numberFormat
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// CGDProfiles are the Caixa Geral de Depósitos exports. More specific
// profiles come first.
var CGDProfiles = []Profile{
	{
		Name:        "cgd-cartao",
		DateCol:     "Data",
		DateLayouts: []string{"02-01-2006"},
		DescCol:     "Descrição",
		AmountMode:  amountSplit,
		DebitCol:    "Débito",
		CreditCol:   "Crédito",
		Numbers:     numberEuropean,
	},
	{
		Name:        "cgd-extrato",
		DateCol:     "Data mov.",
		DateLayouts: []string{"02-01-2006"},
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Movimento",
		Numbers:     numberEuropean,
	},
	{
		Name:        "cgd-conta",
		DateCol:     "Data mov.",
		DateLayouts: []string{"02-01-2006"},
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Montante",
		Numbers:     numberEuropean,
	},
}

// UPIProfiles are Indian retail bank exports carrying UPI narrations such as
// "UPI/CR/5075.../Pranjal".
var UPIProfiles = []Profile{
	{
		Name:        "upi-narration",
		DateCol:     "Date",
		DateLayouts: []string{"02-Jan-2006", "02/01/06", "02/01/2006"},
		DescCol:     "Narration",
		AmountMode:  amountSplit,
		DebitCol:    "Withdrawal Amt.",
		CreditCol:   "Deposit Amt.",
		Numbers:     numberPlain,
	},
	{
		Name:        "upi-description",
		DateCol:     "Txn Date",
		DateLayouts: []string{"02 Jan 2006", "02-Jan-2006", "02/01/2006"},
		DescCol:     "Description",
		AmountMode:  amountSplit,
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		Numbers:     numberPlain,
	},
}
