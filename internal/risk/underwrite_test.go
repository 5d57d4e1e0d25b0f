package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStabilityLabel(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		months int
		want   string
	}{
		{name: "One month", score: 0, months: 1, want: LabelCollectingData},
		{name: "One month ignores score", score: 80, months: 1, want: LabelCollectingData},
		{name: "Below 20", score: 19.999, months: 2, want: LabelHighStability},
		{name: "Exactly 20", score: 20, months: 2, want: LabelMediumStability},
		{name: "Below 50", score: 49.999, months: 6, want: LabelMediumStability},
		{name: "Exactly 50", score: 50, months: 6, want: LabelVolatile},
		{name: "Above 50", score: 120, months: 6, want: LabelVolatile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stabilityLabel(tt.score, tt.months))
		})
	}
}

func TestLoanEligibility(t *testing.T) {
	tests := []struct {
		name   string
		net    float64
		months int
		score  float64
		want   int64
	}{
		{name: "Stable history", net: 1500, months: 3, score: 0, want: 3000},
		{name: "Medium stability scales by three quarters", net: 1500, months: 3, score: 30, want: 2250},
		{name: "Volatile history", net: 1_000_000, months: 12, score: 50, want: 0},
		{name: "Too short history", net: 1_000_000, months: 1, score: 0, want: 0},
		{name: "No income months", net: 1_000_000, months: 0, score: 0, want: 0},
		{name: "Negative savings", net: -10, months: 3, score: 0, want: 0},
		{name: "Floors fractional amounts", net: 1001, months: 4, score: 0, want: 1501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loanEligibility(tt.net, tt.months, tt.score))
		})
	}
}

func TestAssessStability(t *testing.T) {
	incomes := []monthIncome{
		{month: Month{Year: 2026, Month: time.January}, amount: 80},
		{month: Month{Year: 2026, Month: time.February}, amount: 120},
	}

	st := assessStability(incomes)
	assert.Equal(t, 20.0, st.score)
	assert.Equal(t, LabelMediumStability, st.label)
	assert.Empty(t, st.peaks)

	empty := assessStability(nil)
	assert.Equal(t, 0.0, empty.score)
	assert.Equal(t, LabelNotAvailable, empty.label)

	zero := assessStability([]monthIncome{
		{month: Month{Year: 2026, Month: time.January}},
		{month: Month{Year: 2026, Month: time.February}},
	})
	assert.Equal(t, 0.0, zero.score)
}
