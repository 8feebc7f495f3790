package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/countdown"
	"github.com/gaia-console/gaia/internal/flow"
)

type verifyResultMsg struct {
	route flow.Route
	err   error
}

type resendResultMsg struct {
	route flow.Route
	err   error
}

type checkCodeModel struct {
	reg        *flow.Registration
	now        func() time.Time
	resend     countdown.Timer
	form       form
	submitting bool
	notice     string
	err        error
}

func newCheckCodeModel(reg *flow.Registration, now func() time.Time, notice string) checkCodeModel {
	return checkCodeModel{
		reg:    reg,
		now:    now,
		resend: countdown.NewTimer(reg.Cooldown(), now),
		form:   newForm(field{label: "code", placeholder: "6 digits"}),
		notice: notice,
	}
}

func (m checkCodeModel) Update(msg tea.Msg) (checkCodeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case verifyResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = flow.UserMessage(msg.err)
			return m, nil
		}
		return m, navigate(msg.route, "email verified")

	case resendResultMsg:
		m.submitting = false
		m.resend = countdown.NewTimer(m.reg.Cooldown(), m.now)
		if msg.err != nil {
			m.err = msg.err
			m.notice = flow.UserMessage(msg.err)
			return m, nil
		}
		m.err = nil
		m.notice = "a new code has been sent"
		m.form.set(0, "")
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			m.submitting = true
			m.err = nil
			m.notice = ""
			reg, code := m.reg, m.form.value(0)
			return m, func() tea.Msg {
				route, err := reg.Verify(context.Background(), code)
				return verifyResultMsg{route: route, err: err}
			}
		case "ctrl+r":
			if !m.resend.Done() {
				m.notice = fmt.Sprintf("you can request a new code in %ds", countdown.Seconds(m.resend.Remaining()))
				m.err = nil
				return m, nil
			}
			m.submitting = true
			m.notice = ""
			reg := m.reg
			return m, func() tea.Msg {
				route, err := reg.Resend(context.Background())
				return resendResultMsg{route: route, err: err}
			}
		case "esc":
			return m, navigate(m.reg.Restart(), "")
		default:
			m.form.handleKey(msg.String())
		}
	}
	return m, nil
}

func (m checkCodeModel) View(frame int) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Check your inbox") + "\n")
	b.WriteString("  " + dimStyle.Render("Enter the code sent to ") + normalStyle.Render(m.reg.Session().Email) + "\n\n")
	b.WriteString(m.form.render(frame))
	b.WriteString("\n")
	if left := m.resend.Remaining(); left > 0 {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("resend available in %ds", countdown.Seconds(left))) + "\n")
	} else {
		b.WriteString("  " + accentStyle.Render("ctrl+r") + dimStyle.Render(" to resend the code") + "\n")
	}
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("checking...") + "\n")
	case m.notice != "":
		b.WriteString("  " + noticeLine(m.notice, m.err) + "\n")
	}
	return b.String()
}
