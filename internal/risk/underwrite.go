package risk

import "math"

const (
	highStabilityBelow   = 20.0
	mediumStabilityBelow = 50.0
	minIncomeMonths      = 2
	peakFactor           = 1.5

	// Share of the historical monthly surplus considered a safe installment.
	installmentShare = 0.5
	horizonMonths    = 12
)

type monthIncome struct {
	month  Month
	amount float64
}

type stability struct {
	score float64
	label string
	peaks []string
}

// assessStability computes the coefficient of variation (population standard
// deviation over mean, in percent) of monthly income.
func assessStability(incomes []monthIncome) stability {
	if len(incomes) == 0 {
		return stability{label: LabelNotAvailable}
	}

	var sum float64
	for _, in := range incomes {
		sum += in.amount
	}

	mean := sum / float64(len(incomes))

	var sq float64
	for _, in := range incomes {
		d := in.amount - mean
		sq += d * d
	}

	stdDev := math.Sqrt(sq / float64(len(incomes)))

	var score float64
	if mean > 0 {
		score = (stdDev / mean) * 100
	}

	var peaks []string

	for _, in := range incomes {
		if in.amount > mean*peakFactor {
			peaks = append(peaks, in.month.String())
		}
	}

	return stability{
		score: score,
		label: stabilityLabel(score, len(incomes)),
		peaks: peaks,
	}
}

func stabilityLabel(score float64, incomeMonths int) string {
	switch {
	case incomeMonths < minIncomeMonths:
		return LabelCollectingData
	case score < highStabilityBelow:
		return LabelHighStability
	case score < mediumStabilityBelow:
		return LabelMediumStability
	default:
		return LabelVolatile
	}
}

func riskFactor(score float64, incomeMonths int) float64 {
	switch {
	case incomeMonths < minIncomeMonths:
		return 0
	case score < highStabilityBelow:
		return 1
	case score < mediumStabilityBelow:
		return 0.75
	default:
		return 0
	}
}

// loanEligibility is a linear underwriting rule over the full history: half
// the average monthly surplus as installment, over a fixed horizon, scaled by
// the stability risk factor.
func loanEligibility(netSavings float64, incomeMonths int, score float64) int64 {
	monthCount := max(1, incomeMonths)

	var avgSurplus float64
	if netSavings > 0 {
		avgSurplus = netSavings / float64(monthCount)
	}

	installment := avgSurplus * installmentShare
	base := installment * horizonMonths

	return int64(math.Floor(base * riskFactor(score, incomeMonths)))
}
