package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

type ledgerMode int

const (
	ledgerBrowsing ledgerMode = iota
	ledgerAdding
)

var kindFilters = []struct {
	label string
	kind  *transaction.Kind
}{
	{label: "All"},
	{label: "Income", kind: new(transaction.KindIncome)},
	{label: "Expense", kind: new(transaction.KindExpense)},
}

// entryForm holds the huh bindings. It lives behind a pointer so the bound
// fields survive model copies.
type entryForm struct {
	amount       string
	kind         transaction.Kind
	date         string
	category     string
	counterparty string
}

type ListModel struct {
	CommonModel
	txService *transaction.Service
	loc       *time.Location

	state ledgerMode
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	entry *entryForm

	kindFilterIdx int

	loading bool
	err     error
	status  string
}

func NewListModel(txSvc *transaction.Service, loc *time.Location) ListModel {
	return ListModel{
		txService: txSvc,
		loc:       loc,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Kind", Width: 9},
			{Title: "Amount", Width: 12},
			{Title: "Counterparty", Width: 28},
			{Title: "Category", Width: 20},
			{Title: "Verified", Width: 8},
		}, 15),
		loading: true,
	}
}

func (m ListModel) Title() string { return "Ledger" }

func (m ListModel) ShortHelp() string {
	if m.state == ledgerAdding {
		return "Tab: next field | Esc: cancel"
	}

	return "Esc: back | a: add | x: delete | k: kind filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.syncRows()

		return m, nil

	case ledgerWriteMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = ledgerBrowsing
		m.form = nil
		m.table.Focus()

		return m, m.fetchCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case ledgerBrowsing:
		return m.browse(msg)
	case ledgerAdding:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m ListModel) browse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.fetchCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.deleteCmd()
		case "k":
			m.kindFilterIdx = (m.kindFilterIdx + 1) % len(kindFilters)
			return m, m.fetchCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.entry = &entryForm{
		kind: transaction.KindIncome,
		date: time.Now().In(m.loc).Format("2006-01-02"),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Kind]().
				Title("Kind").
				Options(
					huh.NewOption("Income", transaction.KindIncome),
					huh.NewOption("Expense", transaction.KindExpense),
				).
				Value(&m.entry.kind),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&m.entry.amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return errors.New("amount must be a number")
					}

					if d.IsNegative() {
						return errors.New("amount cannot be negative")
					}

					return nil
				}),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.entry.date).
				Validate(func(s string) error {
					if _, err := time.ParseInLocation("2006-01-02", s, m.loc); err != nil {
						return errors.New("date must be YYYY-MM-DD")
					}

					return nil
				}),

			huh.NewInput().
				Title("Category").
				Value(&m.entry.category),

			huh.NewInput().
				Title("Counterparty").
				Placeholder(transaction.DefaultCounterparty).
				Value(&m.entry.counterparty),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerAdding
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = ledgerBrowsing
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Filter: [k] Kind: %s | %d entries",
		activeStyle(kindFilters[m.kindFilterIdx].label), len(m.txs))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == ledgerAdding && m.form != nil {
		panel := panelStyle.Width(48).Render("New Transaction\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) syncRows() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		verified := ""
		if tx.Verified {
			verified = "yes"
		}

		rows = append(rows, table.Row{
			FormatDate(tx.OccurredAt.In(m.loc)),
			string(tx.Kind),
			FormatAmount(tx.Amount),
			tx.Counterparty,
			tx.Category,
			verified,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type ledgerLoadedMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) fetchCmd() tea.Cmd {
	filter := transaction.ListFilter{Kind: kindFilters[m.kindFilterIdx].kind}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return ledgerLoadedMsg{txs: txs, err: err}
	}
}

type ledgerWriteMsg struct {
	status string
	err    error
}

func (m ListModel) createCmd() tea.Cmd {
	entry := *m.entry

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(entry.amount))
		if err != nil {
			return ledgerWriteMsg{err: err}
		}

		occurredAt, err := time.ParseInLocation("2006-01-02", entry.date, m.loc)
		if err != nil {
			return ledgerWriteMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Create(ctx, transaction.CreateParams{
			Amount:       amount,
			Kind:         entry.kind,
			OccurredAt:   occurredAt,
			Category:     strings.TrimSpace(entry.category),
			Counterparty: strings.TrimSpace(entry.counterparty),
		})
		if err != nil {
			return ledgerWriteMsg{err: err}
		}

		return ledgerWriteMsg{status: fmt.Sprintf("Added transaction %d.", tx.ID)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	id := m.txs[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, id); err != nil {
			return ledgerWriteMsg{err: err}
		}

		return ledgerWriteMsg{status: fmt.Sprintf("Deleted transaction %d.", id)}
	}
}
