package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/ledgercert/internal/importer/statement"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cgdParser() *statement.Parser {
	return statement.NewParser(time.UTC, statement.CGDProfiles)
}

func TestParser_CGDConta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	rows, err := cgdParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 1, 30), rows[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", rows[0].Description)
	assert.True(t, dec("588.74").Equal(rows[0].Amount))
	assert.Equal(t, transaction.KindExpense, rows[0].Kind)

	assert.Equal(t, date(2026, 1, 9), rows[1].Date)
	assert.True(t, dec("8608.52").Equal(rows[1].Amount))
	assert.Equal(t, transaction.KindIncome, rows[1].Kind)
}

func TestParser_CGDExtrato(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Conta ;0829015676030 - EUR - Conta Extracto

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	rows, err := cgdParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "PAGAMENTO TSU", rows[0].Description)
	assert.True(t, dec("608.13").Equal(rows[0].Amount))
	assert.Equal(t, transaction.KindExpense, rows[0].Kind)
	assert.True(t, dec("4324.06").Equal(rows[1].Amount))
	assert.Equal(t, transaction.KindIncome, rows[1].Kind)
}

func TestParser_CGDCartao(t *testing.T) {
	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;REFUND AMAZON ;  ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	rows, err := cgdParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "PA GONDOMAR         GONDOMAR", rows[0].Description)
	assert.True(t, dec("64").Equal(rows[0].Amount))
	assert.Equal(t, transaction.KindExpense, rows[0].Kind)

	assert.True(t, dec("25").Equal(rows[1].Amount))
	assert.Equal(t, transaction.KindIncome, rows[1].Kind)
}

func TestParser_UPINarration(t *testing.T) {
	csv := `Statement of account
Date,Narration,Chq./Ref.No.,Value Dt,Withdrawal Amt.,Deposit Amt.,Closing Balance
03-Oct-2025,UPI/CR/5075123/Pranjal,0000,03-Oct-2025,,"1,500.00","12,000.00"
29-Oct-2025,UPI/DR/5075999/Kirana Store,0000,29-Oct-2025,250.50,,"11,749.50"
`

	rows, err := statement.NewParser(time.UTC, statement.UPIProfiles).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2025, 10, 3), rows[0].Date)
	assert.Equal(t, "UPI/CR/5075123/Pranjal", rows[0].Description)
	assert.True(t, dec("1500").Equal(rows[0].Amount))
	assert.Equal(t, transaction.KindIncome, rows[0].Kind)

	assert.True(t, dec("250.5").Equal(rows[1].Amount))
	assert.Equal(t, transaction.KindExpense, rows[1].Kind)
}

func TestParser_DatesInLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	csv := "Txn Date,Description,Debit,Credit\n01 Nov 2025,SALARY,,100.00\n"

	rows, err := statement.NewParser(ist, statement.UPIProfiles).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, ist), rows[0].Date)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	rows, err := cgdParser().Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "CAFÉ CENTRAL", rows[0].Description)
}

func TestParser_EdgeCases(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantLen int
		wantErr string
	}

	tests := []testCase{
		{
			name:    "EmptyFile",
			csv:     "",
			wantErr: "no matching statement format",
		},
		{
			name: "HeaderOnly",
			csv:  "Data mov.;Data-valor;Descrição;Montante",
		},
		{
			name:    "DifferentColumnOrder",
			csv:     "Random;MetaData\nMontante;Descrição;Data mov.;Ignored\n-10,00;TEST_ORDER;30-01-2026;XXX\n",
			wantLen: 1,
		},
		{
			name:    "MissingDescription",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n",
			wantErr: "row 2: missing description",
		},
		{
			name:    "SkipsFooterRows",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\nTotais;;;;\n",
			wantLen: 1,
		},
		{
			name:    "SkipsZeroAmounts",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;TEST;0,00\n",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := cgdParser().Parse(strings.NewReader(tt.csv))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantLen)
		})
	}
}

func TestParser_LargeAmounts(t *testing.T) {
	csv := "Data mov.;Descrição;Montante\n30-01-2026;BIG TRANSFER;-1.234.567,89\n"

	rows, err := cgdParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "1234567.89", rows[0].Amount.StringFixed(2))
}
