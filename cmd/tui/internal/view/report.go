package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

const (
	reportPollInterval = time.Second
	trendBarWidth      = 30
)

// ReportModel shows the live risk profile. The monitor recomputes in the
// background; the view polls its snapshot.
type ReportModel struct {
	CommonModel
	monitor *risk.Monitor

	snap risk.Snapshot
	// monthIdx indexes snap.Months; -1 selects the full history.
	monthIdx int
	err      error
}

func NewReportModel(monitor *risk.Monitor) ReportModel {
	return ReportModel{
		monitor:  monitor,
		snap:     monitor.Snapshot(),
		monthIdx: -1,
	}
}

func (m ReportModel) Title() string { return "Risk Report" }

func (m ReportModel) ShortHelp() string {
	return "Esc: back | ←/→: month | a: all time"
}

type reportTickMsg struct{}

type filterAppliedMsg struct {
	err error
}

func (m ReportModel) Init() tea.Cmd {
	return m.tick()
}

func (m ReportModel) tick() tea.Cmd {
	return tea.Tick(reportPollInterval, func(time.Time) tea.Msg {
		return reportTickMsg{}
	})
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportTickMsg:
		m.snap = m.monitor.Snapshot()
		return m, m.tick()

	case filterAppliedMsg:
		m.err = msg.err
		m.snap = m.monitor.Snapshot()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "right", "l":
			if m.monthIdx < len(m.snap.Months)-1 {
				m.monthIdx++
				return m, m.applyFilter()
			}
		case "left", "h":
			if m.monthIdx > -1 {
				m.monthIdx--
				return m, m.applyFilter()
			}
		case "a":
			m.monthIdx = -1
			return m, m.applyFilter()
		}
	}

	return m, nil
}

func (m ReportModel) applyFilter() tea.Cmd {
	var filter *risk.Month
	if m.monthIdx >= 0 && m.monthIdx < len(m.snap.Months) {
		filter = new(m.snap.Months[m.monthIdx])
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return filterAppliedMsg{err: m.monitor.SetFilter(ctx, filter)}
	}
}

func (m ReportModel) View() string {
	p := m.snap.Profile

	var b strings.Builder

	fmt.Fprintf(&b, "Period: %s\n\n", activeStyle(p.Period))

	fmt.Fprintf(&b, "Income        %12s\n", FormatMoney(p.TotalIncome))
	fmt.Fprintf(&b, "Expense       %12s\n", FormatMoney(p.TotalExpense))
	fmt.Fprintf(&b, "Net savings   %12s\n", FormatMoney(p.NetSavings))
	fmt.Fprintf(&b, "Transactions  %12d\n", p.TransactionVelocity)
	fmt.Fprintf(&b, "Profit margin %11d%%\n", p.ProfitMarginPercent)
	fmt.Fprintf(&b, "Verified      %11d%%\n", p.VerifiedIncomeRatioPercent)
	fmt.Fprintf(&b, "Surplus/month %12s\n", FormatMoney(p.MonthlySurplus))

	summary := panelStyle.Render(strings.TrimRight(b.String(), "\n"))

	underwriting := panelStyle.Render(fmt.Sprintf(
		"Stability  %.2f\n%s\n\nLoan eligibility\n%s\n\nPeak months\n%s",
		p.StabilityScore,
		activeStyle(p.StabilityLabel),
		successStyle.Render(fmt.Sprintf("%d", p.LoanEligibilityAmount)),
		orNone(strings.Join(p.PeakMonths, ", ")),
	))

	top := lipgloss.JoinHorizontal(lipgloss.Top, summary, underwriting)

	content := lipgloss.JoinVertical(lipgloss.Left,
		top,
		panelStyle.Render("Monthly income\n\n"+renderTrend(p.MonthlyTrend)),
		panelStyle.Render("Top counterparties\n\n"+renderCounterparties(p.TopCounterparties)),
	)

	footer := faintStyle.Render(fmt.Sprintf("Updated %s", m.snap.UpdatedAt.Format(time.TimeOnly)))
	if m.snap.UpdatedAt.IsZero() {
		footer = faintStyle.Render("Waiting for first computation...")
	}

	if m.err != nil {
		footer = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + footer)
}

func renderTrend(trend []risk.MonthAmount) string {
	if len(trend) == 0 {
		return faintStyle.Render("no income yet")
	}

	var peak float64
	for _, t := range trend {
		peak = max(peak, t.Amount)
	}

	lines := make([]string, 0, len(trend))

	for _, t := range trend {
		width := 0
		if peak > 0 {
			width = int(t.Amount / peak * trendBarWidth)
		}

		lines = append(lines, fmt.Sprintf("%s %-*s %s",
			t.Month, trendBarWidth, strings.Repeat("█", width), FormatMoney(t.Amount)))
	}

	return strings.Join(lines, "\n")
}

func renderCounterparties(top []risk.CounterpartyAmount) string {
	if len(top) == 0 {
		return faintStyle.Render("none")
	}

	lines := make([]string, 0, len(top))
	for i, c := range top {
		lines = append(lines, fmt.Sprintf("%d. %-28s %12s", i+1, c.Counterparty, FormatMoney(c.Amount)))
	}

	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return faintStyle.Render("none")
	}

	return s
}
