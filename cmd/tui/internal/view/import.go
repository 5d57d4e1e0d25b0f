package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgercert/internal/importer"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importStep int

const (
	stepChooseFormat importStep = iota
	stepChooseFile
	stepParsing
	stepPreview
	stepCommitting
	stepDone
)

// ImportModel walks through a statement import: pick a format and a file,
// preview the parsed rows, then commit them. Rows already stored are skipped
// on commit and listed afterwards.
type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	step    importStep
	picker  filepicker.Model
	formats []importer.Bank
	cursor  int
	path    string

	parsed  []transaction.CreateParams
	preview table.Model

	result *transaction.ImportResult
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service) ImportModel {
	picker := filepicker.New()
	picker.CurrentDirectory, _ = os.Getwd()
	picker.AllowedTypes = []string{".csv", ".txt"}
	picker.DirAllowed = false
	picker.FileAllowed = true
	picker.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		picker:        picker,
		formats:       []importer.Bank{importer.BankCGD, importer.BankUPI},
		preview: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Kind", Width: 9},
			{Title: "Amount", Width: 12},
			{Title: "Counterparty", Width: 30},
		}, 12),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.step == stepPreview {
		return "Enter: import | Esc: discard"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case parsedMsg:
		if msg.err != nil {
			m.step, m.err = stepDone, msg.err
			return m, nil
		}

		m.parsed = msg.params
		m.preview.SetRows(previewRows(msg.params))
		m.step = stepPreview

		return m, nil

	case committedMsg:
		m.step, m.result, m.err = stepDone, msg.result, msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.stepBack()
		}

		switch m.step {
		case stepChooseFormat:
			return m.chooseFormat(msg)
		case stepPreview:
			if msg.Type == tea.KeyEnter {
				m.step = stepCommitting
				return m, m.commitCmd()
			}

			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)

			return m, cmd
		}
	}

	if m.step != stepChooseFile {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.path = path
		m.step = stepParsing

		return m, m.parseCmd()
	}

	return m, cmd
}

// stepBack leaves the current step; from the first step it leaves the view.
func (m ImportModel) stepBack() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepChooseFile:
		m.step = stepChooseFormat
	case stepPreview, stepDone:
		m.step = stepChooseFormat
		m.parsed, m.result, m.err = nil, nil, nil
	case stepChooseFormat:
		return m, Back
	}

	return m, nil
}

func (m ImportModel) chooseFormat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(m.formats)-1, m.cursor+1)
	case "enter":
		m.step = stepChooseFile
		return m, m.picker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1, 2)

	switch m.step {
	case stepChooseFormat:
		s := "Statement format:\n\n"
		for i, f := range m.formats {
			marker := "  "
			if i == m.cursor {
				marker = activeStyle("> ")
			}

			s += marker + string(f) + "\n"
		}

		return pad.Render(s)
	case stepChooseFile:
		return pad.Render(fmt.Sprintf("Pick a %s statement:\n\n%s", m.formats[m.cursor], m.picker.View()))
	case stepParsing:
		return pad.Render("Reading " + m.path + "...")
	case stepPreview:
		return pad.Render(m.previewSummary() + "\n\n" + m.preview.View() + "\n\n" + faintStyle.Render(m.ShortHelp()))
	case stepCommitting:
		return pad.Render(fmt.Sprintf("Importing %d rows...", len(m.parsed)))
	case stepDone:
		return pad.Render(m.doneView() + "\n\n" + faintStyle.Render("(Esc to go back)"))
	}

	return ""
}

func (m ImportModel) previewSummary() string {
	var income, expense decimal.Decimal

	for _, p := range m.parsed {
		if p.Kind == transaction.KindIncome {
			income = income.Add(p.Amount)
		} else {
			expense = expense.Add(p.Amount)
		}
	}

	return fmt.Sprintf("%d rows from %s\nIncome %s | Expense %s",
		len(m.parsed), m.path, successStyle.Render(FormatAmount(income)), errorStyle.Render(FormatAmount(expense)))
}

func (m ImportModel) doneView() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Import failed: %v", m.err))
	}

	s := successStyle.Render(fmt.Sprintf("Imported %d verified transactions.", len(m.result.Imported)))
	if len(m.result.Duplicates) == 0 {
		return s
	}

	s += fmt.Sprintf("\n\nSkipped %d rows already in the ledger:\n", len(m.result.Duplicates))
	for _, d := range m.result.Duplicates {
		s += faintStyle.Render(fmt.Sprintf("  %s  %-8s %12s  %s",
			FormatDate(d.OccurredAt), d.Kind, FormatAmount(d.Amount), d.Counterparty)) + "\n"
	}

	return s
}

func previewRows(params []transaction.CreateParams) []table.Row {
	rows := make([]table.Row, len(params))
	for i, p := range params {
		rows[i] = table.Row{FormatDate(p.OccurredAt), string(p.Kind), FormatAmount(p.Amount), p.Counterparty}
	}

	return rows
}

// Messages

type parsedMsg struct {
	params []transaction.CreateParams
	err    error
}

type committedMsg struct {
	result *transaction.ImportResult
	err    error
}

func (m ImportModel) parseCmd() tea.Cmd {
	bank, path := m.formats[m.cursor], m.path

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := m.importService.Import(ctx, bank, f)

		return parsedMsg{params: params, err: err}
	}
}

func (m ImportModel) commitCmd() tea.Cmd {
	params := m.parsed

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.txService.ImportBatch(ctx, params)

		return committedMsg{result: result, err: err}
	}
}
