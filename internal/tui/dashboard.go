package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/pkg/domain"
)

type statusLoadedMsg struct {
	status *domain.CheckinStatus
	err    error
}

type checkinResultMsg struct {
	result *domain.CheckinResult
	err    error
}

type copyResultMsg struct {
	err error
}

type dashboardModel struct {
	deps     Deps
	tokens   domain.AuthTokens
	identity *session.Identity
	idErr    error
	status   *domain.CheckinStatus
	loading  bool
	notice   string
	err      error
}

func newDashboardModel(deps Deps, notice string) dashboardModel {
	m := dashboardModel{deps: deps, notice: notice}
	tokens, ok, err := session.Tokens(deps.Store)
	switch {
	case err != nil:
		m.idErr = err
	case !ok:
		m.idErr = errors.New("not signed in")
	default:
		m.tokens = tokens
		m.identity, m.idErr = session.InspectAccessToken(tokens.AccessToken)
	}
	// Init issues the first status load.
	m.loading = m.canCheckin()
	return m
}

func (m dashboardModel) canCheckin() bool {
	return m.deps.Points != nil && m.identity != nil
}

func (m dashboardModel) Init() tea.Cmd {
	if !m.canCheckin() {
		return nil
	}
	return m.loadStatus()
}

func (m dashboardModel) loadStatus() tea.Cmd {
	points, account := m.deps.Points, m.identity.AccountID
	return func() tea.Msg {
		st, err := points.CheckinStatus(context.Background(), account)
		return statusLoadedMsg{status: st, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = "could not load check-in status: " + flow.UserMessage(msg.err)
			return m, nil
		}
		m.status = msg.status
		return m, nil

	case checkinResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.notice = "check-in failed: " + flow.UserMessage(msg.err)
			return m, nil
		}
		m.err = nil
		m.notice = checkinNotice(msg.result)
		m.loading = true
		return m, m.loadStatus()

	case copyResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.err = nil
			m.notice = "access token copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch msg.String() {
	case "c":
		if !m.canCheckin() {
			m.err = errors.New("check-in unavailable")
			m.notice = "check-in needs an admin token (GAIA_TOKEN) and a valid session"
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.loading = true
		points, account := m.deps.Points, m.identity.AccountID
		return m, func() tea.Msg {
			res, err := points.Checkin(context.Background(), account)
			return checkinResultMsg{result: res, err: err}
		}
	case "r":
		if m.canCheckin() && !m.loading {
			m.loading = true
			return m, m.loadStatus()
		}
	case "y":
		if m.tokens.AccessToken == "" {
			return m, nil
		}
		token, write := m.tokens.AccessToken, m.deps.Clipboard
		return m, func() tea.Msg {
			return copyResultMsg{err: write(token)}
		}
	case "o":
		cfg := m.deps.Config
		if u, err := m.deps.OpenPage(cfg.WebURL, cfg.LandingPath); err != nil {
			m.err = err
			m.notice = "open " + u + " in your browser"
		}
	case "x":
		if err := session.ClearTokens(m.deps.Store); err != nil {
			m.err = err
			m.notice = "sign out failed: " + err.Error()
			return m, nil
		}
		return m, navigate(flow.NewRoute(flow.PathSignIn), "signed out")
	}
	return m, nil
}

func checkinNotice(r *domain.CheckinResult) string {
	if r == nil {
		return "checked in"
	}
	if !r.Success {
		if r.Message != "" {
			return r.Message
		}
		return "already checked in today"
	}
	s := fmt.Sprintf("checked in: +%s points, %d day streak", formatPoints(r.PointsEarned), r.ConsecutiveDays)
	if r.IsBonus {
		s += " (bonus!)"
	}
	return s
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Signed in") + "\n\n")

	if m.idErr != nil {
		b.WriteString("  " + errorStyle.Render("session: "+m.idErr.Error()) + "\n")
	} else {
		now := m.deps.Now()
		b.WriteString(row("account", m.identity.AccountID.String()))
		if !m.identity.ExpiresAt.IsZero() {
			exp := formatUntil(m.identity.ExpiresAt, now)
			if m.identity.Expired(now) {
				exp = errorStyle.Render(exp + ", sign in again")
			}
			b.WriteString(row("token expires", exp))
		}
		b.WriteString(row("token", truncStr(m.tokens.AccessToken, 24)))
	}

	b.WriteString("\n")
	switch {
	case m.deps.Points == nil:
		b.WriteString("  " + metaStyle.Render("set GAIA_TOKEN to an admin token to see check-ins and points") + "\n")
	case m.status != nil:
		st := m.status
		today := dimStyle.Render("not yet")
		if st.HasCheckedIn {
			today = successStyle.Render("done")
		}
		b.WriteString(row("checked in today", today))
		b.WriteString(row("streak", fmt.Sprintf("%d days", st.ConsecutiveDays)))
		if st.NextBonusDay > 0 {
			b.WriteString(row("next bonus", fmt.Sprintf("in %d days", st.NextBonusDay)))
		}
		b.WriteString(row("points", goldStyle.Render(formatPoints(st.AvailablePoints))+dimStyle.Render(" available of "+formatPoints(st.TotalPoints))))
		if st.LastCheckinDate != nil {
			b.WriteString(row("last check-in", *st.LastCheckinDate))
		}
	case m.loading || m.canCheckin():
		b.WriteString("  " + dimStyle.Render("loading check-in status...") + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + noticeLine(m.notice, m.err) + "\n")
	}
	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("  %s  %s\n", metaStyle.Render(fmt.Sprintf("%-16s", label)), normalStyle.Render(value))
}
