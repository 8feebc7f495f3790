package tui

import (
	"context"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/pkg/domain"
)

const (
	signinEmail = iota
	signinPassword
)

type loginResultMsg struct {
	route flow.Route
	err   error
}

type signinModel struct {
	ctrl       *flow.SignIn
	params     url.Values
	form       form
	submitting bool
	notice     string
	err        error
}

func newSigninModel(ctrl *flow.SignIn, route flow.Route, notice string) signinModel {
	m := signinModel{
		ctrl:   ctrl,
		params: route.Query,
		form: newForm(
			field{label: "email", placeholder: "you@example.com"},
			field{label: "password", placeholder: "at least 8 characters, letters and digits", secret: true},
		),
		notice: notice,
	}
	if email := route.Get("email"); email != "" {
		m.form.set(signinEmail, email)
		m.form.focus = signinPassword
	}
	return m
}

func (m signinModel) invite() bool {
	return m.params.Get("invite_token") != ""
}

func (m signinModel) Update(msg tea.Msg) (signinModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = flow.UserMessage(msg.err)
			return m, nil
		}
		notice := ""
		if msg.route.Path == flow.PathRegister {
			notice = "no account uses this email yet, create one"
		}
		return m, navigate(msg.route, notice)

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if !m.form.last() {
				m.form.next()
				return m, nil
			}
			return m.submit()
		case "ctrl+r":
			if m.ctrl.RegistrationAllowed() {
				return m, navigate(flow.NewRoute(flow.PathRegister, "email", strings.TrimSpace(m.form.value(signinEmail))), "")
			}
		default:
			m.form.handleKey(msg.String())
		}
	}
	return m, nil
}

func (m signinModel) submit() (signinModel, tea.Cmd) {
	m.submitting = true
	m.err = nil
	m.notice = ""
	ctrl, params := m.ctrl, m.params
	creds := domain.Credentials{Email: m.form.value(signinEmail), Password: m.form.value(signinPassword)}
	return m, func() tea.Msg {
		route, err := ctrl.Login(context.Background(), creds, params)
		return loginResultMsg{route: route, err: err}
	}
}

func (m signinModel) View(frame int) string {
	var b strings.Builder
	title := "Sign in to the console"
	if m.invite() {
		title = "Sign in to accept your invitation"
		if ws := m.params.Get("workspace_name"); ws != "" {
			title = "Sign in to join " + ws
		}
	}
	b.WriteString("  " + titleStyle.Render(title) + "\n\n")
	b.WriteString(m.form.render(frame))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in...") + "\n")
	case m.notice != "":
		b.WriteString("  " + noticeLine(m.notice, m.err) + "\n")
	}
	if m.ctrl.RegistrationAllowed() && !m.invite() {
		b.WriteString("\n  " + dimStyle.Render("No account yet? ") + accentStyle.Render("ctrl+r") + dimStyle.Render(" to register") + "\n")
	}
	return b.String()
}

func (m signinModel) helpKeys() string {
	if m.ctrl.RegistrationAllowed() && !m.invite() {
		return helpBar("tab", "next", "enter", "sign in", "ctrl+r", "register", "f1", "help", "ctrl+c", "quit")
	}
	return helpBar("tab", "next", "enter", "sign in", "f1", "help", "ctrl+c", "quit")
}
