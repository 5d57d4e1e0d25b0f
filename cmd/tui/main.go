package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ledgercert/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	certStore "github.com/MrJamesThe3rd/ledgercert/internal/certificate/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/config"
	"github.com/MrJamesThe3rd/ledgercert/internal/counterparty"
	counterpartyStore "github.com/MrJamesThe3rd/ledgercert/internal/counterparty/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/database"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	identityStore "github.com/MrJamesThe3rd/ledgercert/internal/identity/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/importer"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/signer"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ledgercert/internal/transaction/store"
)

const logFile = "ledgercert-tui.log"

type model struct {
	cfg             *config.Config
	loc             *time.Location
	txService       *transaction.Service
	importService   *importer.Service
	identityService *identity.Service
	monitor         *risk.Monitor
	certifier       *certificate.Certifier

	currentView View

	identityView view.IdentityModel
	importView   view.ImportModel
	listView     view.ListModel
	reportView   view.ReportModel
	certifyView  view.CertifyModel

	onboarded bool
}

type View int

const (
	ViewMenu     View = 0
	ViewIdentity View = 1
	ViewImport   View = 2
	ViewList     View = 3
	ViewReport   View = 4
	ViewCertify  View = 5
)

// initialModel wires the in-process services. The returned func releases the
// change subscription and the database handle.
func initialModel(ctx context.Context) (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))
	cpSvc := counterparty.NewService(counterpartyStore.New(db))
	idSvc := identity.NewService(identityStore.New(db))
	impSvc := importer.NewService(loc, cpSvc)

	monitor := risk.NewMonitor(risk.NewAggregator(loc), txSvc, nil)
	changes, unsubscribe := txSvc.Subscribe()

	go monitor.Run(ctx, changes)

	certifier := certificate.NewCertifier(
		signer.NewECDSA(signer.NewFileKeyStore(cfg.Signer.KeyPath)),
		certificate.WithDeviceModel(cfg.Device.Model),
		certificate.WithStore(certStore.New(db)),
	)

	current := ViewMenu

	id, err := idSvc.Get(ctx)
	if err != nil {
		slog.Error("failed to load identity", "error", err)
	}

	if !id.Onboarded {
		current = ViewIdentity
	}

	cleanup := func() {
		unsubscribe()

		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}

	return model{
		cfg:             cfg,
		loc:             loc,
		txService:       txSvc,
		importService:   impSvc,
		identityService: idSvc,
		monitor:         monitor,
		certifier:       certifier,
		currentView:     current,
		identityView:    view.NewIdentityModel(idSvc),
		importView:      view.NewImportModel(txSvc, impSvc),
		listView:        view.NewListModel(txSvc, loc),
		reportView:      view.NewReportModel(monitor),
		certifyView:     view.NewCertifyModel(certifier, monitor, idSvc),
		onboarded:       id.Onboarded,
	}, cleanup
}

func (m model) Init() tea.Cmd {
	if m.currentView == ViewIdentity {
		return m.identityView.Init()
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.monitor)

				return m, m.reportView.Init()
			case "2":
				m.currentView = ViewCertify
				m.certifyView = view.NewCertifyModel(m.certifier, m.monitor, m.identityService)

				return m, m.certifyView.Init()
			case "3":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "4":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.loc)

				return m, m.listView.Init()
			case "5":
				m.currentView = ViewIdentity
				m.identityView = view.NewIdentityModel(m.identityService)

				return m, m.identityView.Init()
			}
		}
	case view.IdentitySavedMsg:
		m.onboarded = true
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewIdentity:
		var newModel tea.Model
		newModel, cmd = m.identityView.Update(msg)
		m.identityView = newModel.(view.IdentityModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewCertify:
		var newModel tea.Model
		newModel, cmd = m.certifyView.Update(msg)
		m.certifyView = newModel.(view.CertifyModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		greeting := "Complete your identity (5) before certifying.\n\n"
		if m.onboarded {
			greeting = ""
		}

		return lipgloss.NewStyle().Padding(2).Render(
			m.cfg.App.Name + "\n\n" +
				greeting +
				"1. Risk Report\n" +
				"2. Certificate\n" +
				"3. Import Statement\n" +
				"4. Ledger\n" +
				"5. Identity\n\n" +
				"q. Quit",
		)
	case ViewIdentity:
		return m.identityView.View()
	case ViewImport:
		return m.importView.View()
	case ViewList:
		return m.listView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewCertify:
		return m.certifyView.View()
	}

	return "Unknown View"
}

func main() {
	f, err := tea.LogToFile(logFile, "tui")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initial, cleanup := initialModel(ctx)
	defer cleanup()

	p := tea.NewProgram(initial, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		cleanup()
		os.Exit(1)
	}
}
