package risk

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

const topCounterpartyLimit = 5

var hundred = decimal.NewFromInt(100)

// Aggregator derives risk profiles from transaction histories. It holds no
// mutable state and is safe for concurrent use.
type Aggregator struct {
	loc *time.Location
}

// NewAggregator returns an Aggregator bucketing months in loc. A nil loc
// means UTC.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}

	return &Aggregator{loc: loc}
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate computes the Profile of txs. When filter is set, period figures
// only count transactions in that month; history figures never do.
//
// Any transaction violating its invariants fails the whole aggregation with
// an error wrapping transaction.ErrMalformed.
func (a *Aggregator) Aggregate(txs []*transaction.Transaction, filter *Month) (Profile, error) {
	if err := validateAll(txs); err != nil {
		return Profile{}, err
	}

	period := PeriodAllTime
	if filter != nil {
		period = filter.String()
	}

	p := emptyProfile(period)
	if len(txs) == 0 {
		return p, nil
	}

	a.aggregatePeriod(&p, txs, filter)
	a.aggregateHistory(&p, txs)

	return p, nil
}

func (a *Aggregator) aggregatePeriod(p *Profile, txs []*transaction.Transaction, filter *Month) {
	var income, expense, verified decimal.Decimal

	byCounterparty := make(map[string]decimal.Decimal)
	incomeMonths := make(map[Month]struct{})

	for _, tx := range txs {
		month := MonthOf(tx.OccurredAt, a.loc)
		if filter != nil && month != *filter {
			continue
		}

		p.TransactionVelocity++

		if tx.Kind == transaction.KindExpense {
			expense = expense.Add(tx.Amount)
			continue
		}

		income = income.Add(tx.Amount)
		if tx.Verified {
			verified = verified.Add(tx.Amount)
		}

		byCounterparty[tx.Counterparty] = byCounterparty[tx.Counterparty].Add(tx.Amount)
		incomeMonths[month] = struct{}{}
	}

	net := income.Sub(expense)

	p.TotalIncome = income.InexactFloat64()
	p.TotalExpense = expense.InexactFloat64()
	p.NetSavings = net.InexactFloat64()
	p.ProfitMarginPercent = percentOf(net, income)
	p.VerifiedIncomeRatioPercent = percentOf(verified, income)
	p.TopCounterparties = topCounterparties(byCounterparty, topCounterpartyLimit)

	if n := len(incomeMonths); n > 0 {
		p.MonthlySurplus = net.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
	}
}

func (a *Aggregator) aggregateHistory(p *Profile, txs []*transaction.Transaction) {
	var income, expense decimal.Decimal

	monthly := make(map[Month]decimal.Decimal)

	for _, tx := range txs {
		if tx.Kind == transaction.KindExpense {
			expense = expense.Add(tx.Amount)
			continue
		}

		income = income.Add(tx.Amount)
		month := MonthOf(tx.OccurredAt, a.loc)
		monthly[month] = monthly[month].Add(tx.Amount)
	}

	months := sortedMonths(monthly)
	incomes := make([]monthIncome, len(months))

	p.MonthlyTrend = make([]MonthAmount, len(months))

	for i, m := range months {
		amount := monthly[m].InexactFloat64()
		incomes[i] = monthIncome{month: m, amount: amount}
		p.MonthlyTrend[i] = MonthAmount{Month: m.String(), Amount: amount}
	}

	st := assessStability(incomes)
	p.StabilityScore = st.score
	p.StabilityLabel = st.label
	p.PeakMonths = st.peaks

	p.LoanEligibilityAmount = loanEligibility(income.Sub(expense).InexactFloat64(), len(incomes), st.score)
}

// AvailableMonths lists the distinct months present in txs, oldest first.
func (a *Aggregator) AvailableMonths(txs []*transaction.Transaction) []Month {
	set := make(map[Month]struct{})
	for _, tx := range txs {
		set[MonthOf(tx.OccurredAt, a.loc)] = struct{}{}
	}

	return sortedMonths(set)
}

// percentOf returns part/whole*100 truncated toward zero, or 0 when whole is
// not positive.
func percentOf(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}

	return int(part.Div(whole).Mul(hundred).IntPart())
}

func topCounterparties(totals map[string]decimal.Decimal, limit int) []CounterpartyAmount {
	out := make([]CounterpartyAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CounterpartyAmount{Counterparty: name, Amount: amount.InexactFloat64()})
	}

	slices.SortFunc(out, func(x, y CounterpartyAmount) int {
		switch {
		case x.Amount > y.Amount:
			return -1
		case x.Amount < y.Amount:
			return 1
		}

		return strings.Compare(x.Counterparty, y.Counterparty)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}

func sortedMonths[V any](set map[Month]V) []Month {
	months := make([]Month, 0, len(set))
	for m := range set {
		months = append(months, m)
	}

	slices.SortFunc(months, func(x, y Month) int {
		switch {
		case x.Before(y):
			return -1
		case y.Before(x):
			return 1
		}

		return 0
	})

	return months
}

func validateAll(txs []*transaction.Transaction) error {
	var errs []error

	for i, tx := range txs {
		if tx == nil {
			errs = append(errs, fmt.Errorf("%w: nil transaction at index %d", transaction.ErrMalformed, i))
			continue
		}

		if err := tx.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
