package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/countdown"
	"github.com/gaia-console/gaia/internal/flow"
)

const registeredNotice = "account created, sign in to continue"

type successModel struct {
	redirect flow.Redirect
	left     bool
}

func newSuccessModel(r flow.Redirect) successModel {
	return successModel{redirect: r}
}

func (m successModel) Update(msg tea.Msg) (successModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		if !m.left && m.redirect.Timer.Done() {
			m.left = true
			return m, navigate(m.redirect.Route, registeredNotice)
		}
	case tea.KeyMsg:
		if msg.String() == "enter" && !m.left {
			m.left = true
			return m, navigate(m.redirect.Route, registeredNotice)
		}
	}
	return m, nil
}

func (m successModel) View() string {
	secs := countdown.Seconds(m.redirect.Timer.Remaining())
	body := successStyle.Render("Account created") + "\n\n" +
		dimStyle.Render(fmt.Sprintf("Taking you to sign in in %ds...", secs))
	return panelStyle.Render(body) + "\n"
}
