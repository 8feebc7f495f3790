package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gaia-console/gaia/internal/browser"
	"github.com/gaia-console/gaia/internal/config"
	"github.com/gaia-console/gaia/internal/countdown"
	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/pkg/domain"
)

// ConsoleAPI is the console API the sign-in and registration screens use.
type ConsoleAPI interface {
	flow.Registrar
	flow.Authenticator
}

// PointsAPI is the admin API the dashboard uses for check-ins.
type PointsAPI interface {
	CheckinStatus(ctx context.Context, accountID uuid.UUID) (*domain.CheckinStatus, error)
	Checkin(ctx context.Context, accountID uuid.UUID) (*domain.CheckinResult, error)
}

// Deps are the collaborators of the App. Points may be nil when no admin
// token is configured; the remaining func fields default to the real thing.
type Deps struct {
	Console ConsoleAPI
	Points  PointsAPI
	Store   session.Store
	Config  *config.Config
	Logger  *slog.Logger

	Now       func() time.Time
	Clipboard func(string) error
	OpenPage  func(webURL, route string) (string, error)
}

type screen int

const (
	screenSignIn screen = iota
	screenRegister
	screenCheckCode
	screenSetInfo
	screenSuccess
	screenDashboard
)

// navigateMsg asks the App to show the screen for route.
type navigateMsg struct {
	route  flow.Route
	notice string
}

func navigate(route flow.Route, notice string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{route: route, notice: notice}
	}
}

// registeredMsg shows the success screen after an account is created.
type registeredMsg struct {
	redirect flow.Redirect
}

// App is the root Bubbletea model.
type App struct {
	deps   Deps
	log    *slog.Logger
	signIn *flow.SignIn
	gate   *countdown.Gate
	reg    *flow.Registration

	screen    screen
	signin    signinModel
	register  registerModel
	checkCode checkCodeModel
	setInfo   setInfoModel
	success   successModel
	dashboard dashboardModel

	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int

	initCmd tea.Cmd
}

// NewApp creates the TUI starting at route start.
func NewApp(deps Deps, start flow.Route) App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.OpenPage == nil {
		deps.OpenPage = browser.OpenPage
	}
	cfg := deps.Config

	gate := countdown.NewResendGate(deps.Store, cfg.ResendCooldown)
	gate.Now = deps.Now

	a := App{
		deps: deps,
		log:  deps.Logger.With("component", "tui"),
		gate: gate,
		signIn: flow.NewSignIn(deps.Console, deps.Store, flow.SignInConfig{
			Locale:            cfg.Locale,
			LandingPath:       cfg.LandingPath,
			AllowRegistration: cfg.AllowRegistration,
		WebURL:            cfg.WebURL,
			Logger:            deps.Logger,
		}),
	}
	a, a.initCmd = a.navigate(start, "")
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.initCmd)
}

// navigate switches to the screen for route.
func (a App) navigate(route flow.Route, notice string) (App, tea.Cmd) {
	a.log.Debug("navigate", "route", route.String())
	cfg := a.deps.Config

	switch route.Path {
	case flow.PathSignIn:
		a.screen = screenSignIn
		a.signin = newSigninModel(a.signIn, route, notice)
		return a, nil

	case flow.PathRegister:
		a.reg, _ = flow.ResumeRegistration(a.deps.Console, a.gate, cfg.Locale, a.deps.Logger, route)
		a.screen = screenRegister
		a.register = newRegisterModel(a.reg, route.Get("email"), notice)
		return a, nil

	case flow.PathCheckCode, flow.PathSetInfo:
		if a.reg == nil || a.reg.Route().String() != route.String() {
			reg, err := flow.ResumeRegistration(a.deps.Console, a.gate, cfg.Locale, a.deps.Logger, route)
			if err != nil {
				a.log.Warn("cannot resume registration", "route", route.String(), "error", err)
				return a.navigate(flow.NewRoute(flow.PathRegister), "registration link is incomplete, start again")
			}
			a.reg = reg
		}
		if route.Path == flow.PathCheckCode {
			a.screen = screenCheckCode
			a.checkCode = newCheckCodeModel(a.reg, a.deps.Now, notice)
		} else {
			a.screen = screenSetInfo
			a.setInfo = newSetInfoModel(a.reg, notice)
		}
		return a, nil

	case flow.PathInviteSettings:
		u, err := a.deps.OpenPage(cfg.WebURL, route.String())
		switch {
		case err != nil && u != "":
			notice = "finish joining the workspace at " + u
		case err != nil:
			a.log.Warn("open invite settings", "error", err)
			notice = "signed in; finish joining the workspace in the console"
		default:
			notice = "finish joining the workspace in your browser"
		}
	}

	a.screen = screenDashboard
	a.dashboard = newDashboardModel(a.deps, notice)
	return a, a.dashboard.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		cmds := []tea.Cmd{shimmerTickCmd()}
		if a.screen == screenSuccess {
			var cmd tea.Cmd
			a.success, cmd = a.success.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case navigateMsg:
		return a.navigate(msg.route, msg.notice)

	case registeredMsg:
		a.screen = screenSuccess
		a.success = newSuccessModel(msg.redirect)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if msg.String() == "f1" || (a.screen == screenDashboard && msg.String() == "h") {
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		}
		if a.screen == screenDashboard && msg.String() == "q" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenSignIn:
		a.signin, cmd = a.signin.Update(msg)
	case screenRegister:
		a.register, cmd = a.register.Update(msg)
	case screenCheckCode:
		a.checkCode, cmd = a.checkCode.Update(msg)
	case screenSetInfo:
		a.setInfo, cmd = a.setInfo.Update(msg)
	case screenSuccess:
		a.success, cmd = a.success.Update(msg)
	case screenDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	}
	return a, cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f1", "esc", "h":
		a.helpOpen = false
	case "j", "down":
		if a.helpCursor < len(helpItems)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		item := helpItems[a.helpCursor]
		if _, err := a.deps.OpenPage(a.deps.Config.WebURL, item.route); err != nil {
			a.log.Warn("open page", "route", item.route, "error", err)
		}
	}
	return a, nil
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	pad := (a.width - lipgloss.Width(logo)) / 2
	if pad < 0 {
		pad = 0
	}
	header := strings.Repeat(" ", pad) + logo

	var body, help string
	switch a.screen {
	case screenSignIn:
		body = a.signin.View(a.frame)
		help = a.signin.helpKeys()
	case screenRegister:
		body = a.register.View(a.frame)
		help = helpBar("tab", "next", "enter", "send code", "esc", "sign in", "f1", "terms", "ctrl+c", "quit")
	case screenCheckCode:
		body = a.checkCode.View(a.frame)
		help = helpBar("enter", "verify", "ctrl+r", "resend", "esc", "change email", "ctrl+c", "quit")
	case screenSetInfo:
		body = a.setInfo.View(a.frame)
		help = helpBar("tab", "next", "enter", "create account", "ctrl+c", "quit")
	case screenSuccess:
		body = a.success.View()
		help = helpBar("enter", "sign in now", "ctrl+c", "quit")
	case screenDashboard:
		body = a.dashboard.View()
		help = helpBar("c", "check in", "r", "refresh", "y", "copy token", "o", "open console", "x", "sign out", "h", "help", "q", "quit")
	}

	if a.helpOpen {
		body = helpView(a.deps.Config.WebURL, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	// header(1) + blank(1) + help(1)
	body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")
	return header + "\n\n" + body + "\n" + help
}
