package risk

const (
	LabelNotAvailable    = "N/A"
	LabelCollectingData  = "Collecting Data"
	LabelHighStability   = "High Stability"
	LabelMediumStability = "Medium Stability"
	LabelVolatile        = "Volatile"
)

const PeriodAllTime = "All Time"

type MonthAmount struct {
	Month  string
	Amount float64
}

type CounterpartyAmount struct {
	Counterparty string
	Amount       float64
}

// Profile is the risk and stability summary of a transaction history. It is
// a value: every change to the history produces a new Profile.
//
// Totals, velocity, margins, top counterparties and MonthlySurplus cover the
// filtered period. Stability, MonthlyTrend, PeakMonths and the loan amount
// always cover the full history.
type Profile struct {
	Period string

	TotalIncome         float64
	TotalExpense        float64
	NetSavings          float64
	TransactionVelocity int

	// Percentages truncate toward zero.
	ProfitMarginPercent        int
	VerifiedIncomeRatioPercent int

	StabilityScore float64
	StabilityLabel string
	PeakMonths     []string
	MonthlyTrend   []MonthAmount

	TopCounterparties []CounterpartyAmount

	LoanEligibilityAmount int64
	MonthlySurplus        float64
}

func emptyProfile(period string) Profile {
	return Profile{
		Period:         period,
		StabilityLabel: LabelNotAvailable,
	}
}
