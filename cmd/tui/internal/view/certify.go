package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/qr"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

const certifyPollInterval = 200 * time.Millisecond

type CertifyModel struct {
	CommonModel
	certifier       *certificate.Certifier
	monitor         *risk.Monitor
	identityService *identity.Service

	spinner spinner.Model
	cert    certificate.Certificate
	doc     *certificate.Document
	symbol  *qr.Symbol
	err     error
}

func NewCertifyModel(certifier *certificate.Certifier, monitor *risk.Monitor, identitySvc *identity.Service) CertifyModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := CertifyModel{
		certifier:       certifier,
		monitor:         monitor,
		identityService: identitySvc,
		spinner:         s,
	}
	m.setCertificate(certifier.Current())

	return m
}

func (m CertifyModel) Title() string { return "Certificate" }

func (m CertifyModel) ShortHelp() string {
	return "Esc: back | c: certify | r: reset"
}

type certPollMsg struct{}

type certStartedMsg struct {
	err error
}

func (m CertifyModel) Init() tea.Cmd {
	if m.cert.State == certificate.StateSigning {
		return tea.Batch(m.spinner.Tick, m.poll())
	}

	return nil
}

func (m CertifyModel) poll() tea.Cmd {
	return tea.Tick(certifyPollInterval, func(time.Time) tea.Msg {
		return certPollMsg{}
	})
}

func (m CertifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "c":
			m.err = nil
			return m, m.startCmd()
		case "r":
			m.err = m.certifier.Reset()
			m.setCertificate(m.certifier.Current())

			return m, nil
		}

	case certStartedMsg:
		m.err = msg.err
		m.setCertificate(m.certifier.Current())

		if m.cert.State == certificate.StateSigning {
			return m, tea.Batch(m.spinner.Tick, m.poll())
		}

		return m, nil

	case certPollMsg:
		m.setCertificate(m.certifier.Current())

		if m.cert.State == certificate.StateSigning {
			return m, m.poll()
		}

		return m, nil

	case spinner.TickMsg:
		if m.cert.State != certificate.StateSigning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// setCertificate caches the decoded document and QR symbol of a signed
// certificate so View stays cheap.
func (m *CertifyModel) setCertificate(cert certificate.Certificate) {
	if cert.ID == m.cert.ID && cert.State == m.cert.State {
		return
	}

	m.cert = cert
	m.doc = nil
	m.symbol = nil

	if !cert.IsSigned() {
		return
	}

	doc, err := certificate.ParseDocument(cert.PayloadJSON)
	if err != nil {
		m.err = err
		return
	}

	symbol, err := qr.Encode(cert.PayloadJSON)
	if err != nil {
		m.err = err
		return
	}

	m.doc = &doc
	m.symbol = symbol
}

func (m CertifyModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		snap, err := m.monitor.Latest(ctx)
		if err != nil {
			return certStartedMsg{err: err}
		}

		id, err := m.identityService.Get(ctx)
		if err != nil {
			return certStartedMsg{err: err}
		}

		// Start detaches signing from ctx.
		return certStartedMsg{err: m.certifier.Start(context.WithoutCancel(ctx), snap.AllTime, id)}
	}
}

func (m CertifyModel) View() string {
	var body string

	switch m.cert.State {
	case certificate.StateUnsigned:
		body = "No certificate yet.\n\nPress c to certify your full history."
	case certificate.StateSigning:
		body = fmt.Sprintf("%s Signing...", m.spinner.View())
	case certificate.StateFailed:
		body = errorStyle.Render("Certification failed: "+m.cert.Reason) +
			"\n\nPress r to reset before trying again."
	case certificate.StateSigned:
		body = m.viewSigned()
	}

	if m.err != nil && !errors.Is(m.err, certificate.ErrInsufficientData) {
		body += "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

func (m CertifyModel) viewSigned() string {
	if m.doc == nil || m.symbol == nil {
		return successStyle.Render("Signed.")
	}

	f := m.doc.Financials

	details := panelStyle.Render(fmt.Sprintf(
		"%s\n\n%s\nIssued %s\n\nPeriod        %s\nGross income  %s\nNet surplus   %s\nMargin        %d%%\nStability     %.2f (%s)\n\nDevice %s",
		successStyle.Render("Signed certificate"),
		activeStyle(m.doc.UID),
		m.cert.IssuedAt.Format(time.RFC1123),
		f.Period,
		FormatMoney(f.GrossIncome),
		FormatMoney(f.NetSurplus),
		f.ProfitMarginPercent,
		f.StabilityScore,
		f.StabilityBand,
		m.doc.Meta.DeviceModel,
	))

	return lipgloss.JoinHorizontal(lipgloss.Top, m.symbol.String(), details) +
		"\n\n" + faintStyle.Render("Press c to issue a new certificate.")
}
