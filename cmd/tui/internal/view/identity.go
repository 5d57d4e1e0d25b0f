package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
)

type identityFields struct {
	name        string
	occupation  string
	description string
}

// IdentityModel is the onboarding screen. It is shown first until an
// identity has been saved, and can be revisited from the menu.
type IdentityModel struct {
	CommonModel
	identityService *identity.Service

	form    *huh.Form
	fields  *identityFields
	current identity.Identity
	loaded  bool
	saved   bool
	err     error
}

func NewIdentityModel(svc *identity.Service) IdentityModel {
	return IdentityModel{identityService: svc}
}

func (m IdentityModel) Title() string { return "Identity" }

func (m IdentityModel) ShortHelp() string {
	return "Enter/Tab: navigate form | Esc: back"
}

func (m IdentityModel) Init() tea.Cmd {
	return m.loadCmd()
}

// IdentitySavedMsg is emitted after the identity is stored.
type IdentitySavedMsg struct {
	Identity identity.Identity
}

func (m IdentityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case identityLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.current = msg.identity
		m.loaded = true
		cmd := m.buildForm()

		return m, cmd

	case IdentitySavedMsg:
		m.current = msg.Identity
		m.saved = true

		return m, nil

	case identitySaveErrMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil || m.saved {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m *IdentityModel) buildForm() tea.Cmd {
	m.fields = &identityFields{
		description: m.current.Description,
	}

	// Defaults stay as placeholders so an untouched field keeps them.
	if m.current.Onboarded {
		m.fields.name = m.current.Name
		m.fields.occupation = m.current.Occupation
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder(identity.DefaultName).
				Value(&m.fields.name),

			huh.NewInput().
				Title("Occupation").
				Placeholder(identity.DefaultOccupation).
				Value(&m.fields.occupation),

			huh.NewText().
				Title("About your work").
				CharLimit(500).
				Value(&m.fields.description),
		),
	).WithWidth(60).WithShowHelp(false)

	return m.form.Init()
}

func (m IdentityModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	if !m.loaded {
		return style.Render("Loading identity...")
	}

	if m.saved {
		return style.Render(
			successStyle.Render("Saved.") +
				fmt.Sprintf("\n\nCertificates will be issued to %s.\n\n(Esc to go back)", m.current.UID()),
		)
	}

	return style.Render(panelStyle.Render("Who are you?\n\n" + m.form.View()))
}

// Messages

type identityLoadedMsg struct {
	identity identity.Identity
	err      error
}

type identitySaveErrMsg struct {
	err error
}

func (m IdentityModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, err := m.identityService.Get(ctx)

		return identityLoadedMsg{identity: id, err: err}
	}
}

func (m IdentityModel) saveCmd() tea.Cmd {
	fields := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, err := m.identityService.Update(ctx, identity.UpdateParams{
			Name:        fields.name,
			Occupation:  fields.occupation,
			Description: fields.description,
		})
		if err != nil {
			return identitySaveErrMsg{err: err}
		}

		return IdentitySavedMsg{Identity: id}
	}
}
