package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gaia-console/gaia/internal/config"
	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/pkg/client"
	"github.com/gaia-console/gaia/pkg/domain"
)

var testAccount = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeConsole struct {
	token     string
	sendErr   error
	sendCalls int
	valid     bool
	loginErr  error
	tokens    domain.AuthTokens
	lastLogin domain.LoginRequest
	created   domain.SelfRegisterRequest
}

func (f *fakeConsole) SendEmailCode(_ context.Context, _, _ string) (string, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.token, nil
}

func (f *fakeConsole) VerifyEmailCode(_ context.Context, _, _, _ string) (*domain.CodeValidity, error) {
	return &domain.CodeValidity{IsValid: f.valid}, nil
}

func (f *fakeConsole) SelfRegister(_ context.Context, req domain.SelfRegisterRequest) error {
	f.created = req
	return nil
}

func (f *fakeConsole) Login(_ context.Context, req domain.LoginRequest) (*domain.AuthTokens, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	t := f.tokens
	return &t, nil
}

type fakePoints struct {
	status      domain.CheckinStatus
	result      domain.CheckinResult
	err         error
	checkins    int
	lastAccount uuid.UUID
}

func (f *fakePoints) CheckinStatus(_ context.Context, id uuid.UUID) (*domain.CheckinStatus, error) {
	f.lastAccount = id
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

func (f *fakePoints) Checkin(_ context.Context, id uuid.UUID) (*domain.CheckinResult, error) {
	f.checkins++
	f.lastAccount = id
	if f.err != nil {
		return nil, f.err
	}
	r := f.result
	return &r, nil
}

// harness bundles an App with the fakes behind it.
type harness struct {
	app     App
	console *fakeConsole
	points  *fakePoints
	store   *session.MemoryStore
	clock   *fakeClock
	opened  []string
	copied  []string
}

func accessToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": testAccount.String(),
		"exp":     exp.Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func newHarness(t *testing.T, start string) *harness {
	t.Helper()
	h := &harness{
		console: &fakeConsole{token: "tok-1", valid: true},
		points:  &fakePoints{},
		store:   session.NewMemoryStore(),
		clock:   &fakeClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
	}
	h.console.tokens = domain.AuthTokens{AccessToken: accessToken(t, h.clock.t.Add(2*time.Hour)), RefreshToken: "rt"}
	route, err := flow.ParseRoute(start)
	if err != nil {
		t.Fatalf("ParseRoute(%q): %v", start, err)
	}
	cfg := &config.Config{
		WebURL:            "https://console.example.com",
		Locale:            config.LocaleEnglish,
		ResendCooldown:    60 * time.Second,
		LandingPath:       flow.DefaultLandingPath,
		AllowRegistration: true,
	}
	h.app = NewApp(Deps{
		Console: h.console,
		Points:  h.points,
		Store:   h.store,
		Config:  cfg,
		Now:     h.clock.Now,
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
		OpenPage: func(webURL, route string) (string, error) {
			h.opened = append(h.opened, route)
			return webURL + route, nil
		},
	}, route)
	h.app.width = 80
	h.app.height = 40
	h.run(h.app.initCmd)
	return h
}

// run executes cmd and feeds the resulting messages back until none are left.
func (h *harness) run(cmd tea.Cmd) {
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				h.run(c)
			}
			return
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			return
		}
		var model tea.Model
		model, cmd = h.app.Update(msg)
		h.app = model.(App)
	}
}

func (h *harness) key(k tea.KeyMsg) {
	model, cmd := h.app.Update(k)
	h.app = model.(App)
	h.run(cmd)
}

func (h *harness) press(s string) {
	h.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(string(r))
	}
}

func (h *harness) enter() { h.key(tea.KeyMsg{Type: tea.KeyEnter}) }

func TestAppStartScreens(t *testing.T) {
	tests := []struct {
		start      string
		wantScreen screen
		wantView   string
	}{
		{"/signin", screenSignIn, "Sign in to the console"},
		{"/register?email=ann%40example.com", screenRegister, "ann@example.com"},
		{"/register/check-code?email=ann%40example.com&token=t1", screenCheckCode, "Check your inbox"},
		{"/register/set-info?email=ann%40example.com&token=t1", screenSetInfo, "Set up your account"},
		{"/register/check-code?email=ann%40example.com", screenRegister, "registration link is incomplete"},
	}
	for _, tc := range tests {
		t.Run(tc.start, func(t *testing.T) {
			h := newHarness(t, tc.start)
			if h.app.screen != tc.wantScreen {
				t.Fatalf("screen = %d, want %d", h.app.screen, tc.wantScreen)
			}
			if !strings.Contains(h.app.View(), tc.wantView) {
				t.Errorf("view missing %q:\n%s", tc.wantView, h.app.View())
			}
		})
	}
}

func TestAppRegistrationToSignIn(t *testing.T) {
	h := newHarness(t, "/register")

	h.typeText("ann@example.com")
	h.enter()
	if h.app.screen != screenCheckCode {
		t.Fatalf("after sending code screen = %d, want check-code", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "resend available in 60s") {
		t.Errorf("cooldown not shown:\n%s", h.app.View())
	}

	h.typeText("123456")
	h.enter()
	if h.app.screen != screenSetInfo {
		t.Fatalf("after verify screen = %d, want set-info", h.app.screen)
	}

	h.typeText("Ann")
	h.enter()
	h.typeText("secret123")
	h.enter()
	h.typeText("secret123")
	h.enter()
	if h.app.screen != screenSuccess {
		t.Fatalf("after finalize screen = %d, want success", h.app.screen)
	}
	if h.console.created.Token != "tok-1" || h.console.created.Name != "Ann" {
		t.Errorf("SelfRegister request = %+v", h.console.created)
	}

	h.enter()
	if h.app.screen != screenSignIn {
		t.Fatalf("after success screen = %d, want sign-in", h.app.screen)
	}
	if !strings.Contains(h.app.View(), registeredNotice) {
		t.Errorf("sign-in view missing notice:\n%s", h.app.View())
	}
}

func TestAppRegistrationKeepsQuery(t *testing.T) {
	h := newHarness(t, "/register?invite_token=INV&lang=zh-Hans")

	h.typeText("ann@example.com")
	h.enter()
	if got, want := h.app.reg.Route().String(), "/register/check-code?email=ann%40example.com&invite_token=INV&lang=zh-Hans&token=tok-1"; got != want {
		t.Errorf("check-code route = %q, want %q", got, want)
	}

	h.typeText("123456")
	h.enter()
	if h.app.screen != screenSetInfo {
		t.Fatalf("after verify screen = %d, want set-info", h.app.screen)
	}
	if got, want := h.app.reg.Route().String(), "/register/set-info?email=ann%40example.com&invite_token=INV&lang=zh-Hans&token=tok-1"; got != want {
		t.Errorf("set-info route = %q, want %q", got, want)
	}
}

func TestAppRegistrationAccountExists(t *testing.T) {
	h := newHarness(t, "/register")
	h.console.sendErr = &client.APIError{Code: domain.CodeAccountAlreadyExists}

	h.typeText("ann@example.com")
	h.enter()

	if h.app.screen != screenRegister {
		t.Fatalf("screen = %d, want register", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "already exists") {
		t.Errorf("view missing account exists message:\n%s", h.app.View())
	}
}

func TestAppLoginLandsOnDashboard(t *testing.T) {
	h := newHarness(t, "/signin")
	h.points.status = domain.CheckinStatus{ConsecutiveDays: 12, AvailablePoints: 340, TotalPoints: 500}

	h.typeText("ann@example.com")
	h.enter()
	h.typeText("secret123")
	h.enter()

	if h.app.screen != screenDashboard {
		t.Fatalf("screen = %d, want dashboard", h.app.screen)
	}
	if _, ok, _ := session.Tokens(h.store); !ok {
		t.Error("tokens not stored after login")
	}
	if h.console.lastLogin.Language != config.LocaleEnglish || !h.console.lastLogin.RememberMe {
		t.Errorf("login request = %+v", h.console.lastLogin)
	}
	view := h.app.View()
	for _, want := range []string{testAccount.String(), "12 days", "340", "in 2h"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q:\n%s", want, view)
		}
	}
}

func TestAppLoginUnknownAccountGoesToRegister(t *testing.T) {
	h := newHarness(t, "/signin")
	h.console.loginErr = &client.APIError{Code: domain.CodeAccountNotFound}

	h.typeText("new@example.com")
	h.enter()
	h.typeText("secret123")
	h.enter()

	if h.app.screen != screenRegister {
		t.Fatalf("screen = %d, want register", h.app.screen)
	}
	if got := h.app.register.form.value(0); got != "new@example.com" {
		t.Errorf("register email = %q", got)
	}
}

func TestAppLoginFailureStaysOnSignIn(t *testing.T) {
	h := newHarness(t, "/signin")
	h.console.loginErr = &client.APIError{Code: "invalid_password", Data: []byte(`"wrong password"`)}

	h.typeText("ann@example.com")
	h.enter()
	h.typeText("secret123")
	h.enter()

	if h.app.screen != screenSignIn {
		t.Fatalf("screen = %d, want sign-in", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "wrong password") {
		t.Errorf("view missing server message:\n%s", h.app.View())
	}
}

func TestAppInviteSignIn(t *testing.T) {
	h := newHarness(t, "/signin?invite_token=inv1&workspace_name=Acme")
	if !strings.Contains(h.app.View(), "Sign in to join Acme") {
		t.Errorf("invite title missing:\n%s", h.app.View())
	}

	h.typeText("ann@example.com")
	h.enter()
	h.typeText("secret123")
	h.enter()

	if h.console.lastLogin.InviteToken != "inv1" {
		t.Errorf("invite token = %q", h.console.lastLogin.InviteToken)
	}
	if len(h.opened) != 1 || !strings.HasPrefix(h.opened[0], flow.PathInviteSettings+"?") || !strings.Contains(h.opened[0], "invite_token=inv1") {
		t.Fatalf("opened = %v", h.opened)
	}
	if h.app.screen != screenDashboard {
		t.Errorf("screen = %d, want dashboard", h.app.screen)
	}
}

func TestAppRegisterShortcut(t *testing.T) {
	h := newHarness(t, "/signin")
	h.typeText("ann@example.com")
	h.key(tea.KeyMsg{Type: tea.KeyCtrlR})
	if h.app.screen != screenRegister {
		t.Fatalf("screen = %d, want register", h.app.screen)
	}
	if got := h.app.register.form.value(0); got != "ann@example.com" {
		t.Errorf("register email = %q", got)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	h := newHarness(t, "/signin")

	h.key(tea.KeyMsg{Type: tea.KeyF1})
	if !h.app.helpOpen {
		t.Fatal("help not open after f1")
	}
	if !strings.Contains(h.app.View(), "Terms of Service") {
		t.Errorf("help view missing links:\n%s", h.app.View())
	}

	h.press("j")
	h.enter()
	if len(h.opened) != 1 || h.opened[0] != "/privacy" {
		t.Errorf("opened = %v, want [/privacy]", h.opened)
	}

	h.key(tea.KeyMsg{Type: tea.KeyEsc})
	if h.app.helpOpen {
		t.Error("help still open after esc")
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	h := newHarness(t, "/signin")
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestAppTransportErrorMessage(t *testing.T) {
	h := newHarness(t, "/register")
	h.console.sendErr = errors.New("dial tcp: connection refused")

	h.typeText("ann@example.com")
	h.enter()

	if !strings.Contains(h.app.View(), "network error") {
		t.Errorf("view missing transport message:\n%s", h.app.View())
	}
}
