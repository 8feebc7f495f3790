package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/flow"
)

type codeSentMsg struct {
	route flow.Route
	err   error
}

type registerModel struct {
	reg        *flow.Registration
	form       form
	submitting bool
	notice     string
	err        error
}

func newRegisterModel(reg *flow.Registration, email, notice string) registerModel {
	m := registerModel{
		reg:    reg,
		form:   newForm(field{label: "email", placeholder: "you@example.com"}),
		notice: notice,
	}
	m.form.set(0, email)
	return m
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case codeSentMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = flow.UserMessage(msg.err)
			return m, nil
		}
		return m, navigate(msg.route, "a verification code is on its way to "+msg.route.Get("email"))

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			m.submitting = true
			m.err = nil
			m.notice = ""
			reg, email := m.reg, m.form.value(0)
			return m, func() tea.Msg {
				route, err := reg.RequestCode(context.Background(), email)
				return codeSentMsg{route: route, err: err}
			}
		case "esc":
			return m, navigate(flow.NewRoute(flow.PathSignIn), "")
		default:
			m.form.handleKey(msg.String())
		}
	}
	return m, nil
}

func (m registerModel) View(frame int) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Create an account") + "\n")
	b.WriteString("  " + dimStyle.Render("We will e-mail you a 6-digit verification code.") + "\n\n")
	b.WriteString(m.form.render(frame))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("sending code...") + "\n")
	case m.notice != "":
		b.WriteString("  " + noticeLine(m.notice, m.err) + "\n")
	}
	b.WriteString("\n  " + metaStyle.Render("By registering you agree to the Terms of Service and Privacy Policy (f1).") + "\n")
	return b.String()
}
