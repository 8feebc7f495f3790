package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/flow"
)

const (
	setInfoName = iota
	setInfoPassword
	setInfoConfirm
)

type finalizeResultMsg struct {
	redirect flow.Redirect
	err      error
}

type setInfoModel struct {
	reg        *flow.Registration
	form       form
	submitting bool
	notice     string
	err        error
}

func newSetInfoModel(reg *flow.Registration, notice string) setInfoModel {
	return setInfoModel{
		reg: reg,
		form: newForm(
			field{label: "name", placeholder: "how others will see you"},
			field{label: "password", placeholder: "at least 8 characters, letters and digits", secret: true},
			field{label: "confirm", placeholder: "repeat the password", secret: true},
		),
		notice: notice,
	}
}

func (m setInfoModel) Update(msg tea.Msg) (setInfoModel, tea.Cmd) {
	switch msg := msg.(type) {
	case finalizeResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = flow.UserMessage(msg.err)
			return m, nil
		}
		redirect := msg.redirect
		return m, func() tea.Msg { return registeredMsg{redirect: redirect} }

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
			m.submitting = true
			m.err = nil
			m.notice = ""
			reg := m.reg
			name, pw, confirm := m.form.value(setInfoName), m.form.value(setInfoPassword), m.form.value(setInfoConfirm)
			return m, func() tea.Msg {
				redirect, err := reg.Finalize(context.Background(), name, pw, confirm)
				return finalizeResultMsg{redirect: redirect, err: err}
			}
		default:
			m.form.handleKey(msg.String())
		}
	}
	return m, nil
}

func (m setInfoModel) View(frame int) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Set up your account") + "\n")
	b.WriteString("  " + dimStyle.Render(m.reg.Session().Email) + "\n\n")
	b.WriteString(m.form.render(frame))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("creating account...") + "\n")
	case m.notice != "":
		b.WriteString("  " + noticeLine(m.notice, m.err) + "\n")
	}
	return b.String()
}
