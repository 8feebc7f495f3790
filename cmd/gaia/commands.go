package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/gaia-console/gaia/internal/flow"
	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/internal/tui"
	"github.com/gaia-console/gaia/pkg/client"
	"github.com/gaia-console/gaia/pkg/domain"
)

func startTUI(e *env, start string) error {
	route, err := flow.ParseRoute(start)
	if err != nil {
		return err
	}
	deps := tui.Deps{
		Console:   e.console,
		Store:     e.store,
		Config:    e.cfg,
		Logger:    e.log,
		Clipboard: e.copyText,
		OpenPage:  e.openPage,
	}
	if e.admin != nil {
		deps.Points = e.admin
	}
	p := tea.NewProgram(tui.NewApp(deps, route), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// runTUI opens the dashboard for a live session and the sign-in otherwise.
func runTUI(_ context.Context, e *env, _ *pflag.FlagSet) error {
	start := flow.PathSignIn
	if id, err := e.identity(); err == nil && !id.Expired(time.Now()) {
		start = e.cfg.LandingPath
	}
	return e.launchTUI(e, start)
}

// identity decodes the stored access token.
func (e *env) identity() (*session.Identity, error) {
	t, ok, err := session.Tokens(e.store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("not signed in, run gaia login")
	}
	return session.InspectAccessToken(t.AccessToken)
}

func loginFlags(fs *pflag.FlagSet) {
	fs.String("email", "", "account email")
	fs.Bool("password-stdin", false, "read the password from stdin instead of opening the sign-in screen")
	fs.String("invite-token", "", "workspace invitation token")
}

func runLogin(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	email, _ := fs.GetString("email")
	fromStdin, _ := fs.GetBool("password-stdin")
	invite, _ := fs.GetString("invite-token")

	if !fromStdin {
		return e.launchTUI(e, flow.NewRoute(flow.PathSignIn, "email", email, "invite_token", invite).String())
	}
	password, err := readLine(e)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	signIn := flow.NewSignIn(e.console, e.store, flow.SignInConfig{
		Locale:            e.cfg.Locale,
		LandingPath:       e.cfg.LandingPath,
		AllowRegistration: e.cfg.AllowRegistration,
		WebURL:            e.cfg.WebURL,
		Logger:            e.log,
	})
	params := flow.NewRoute(flow.PathSignIn, "invite_token", invite).Query
	route, err := signIn.Login(ctx, domain.Credentials{Email: email, Password: password}, params)
	if err != nil {
		return errors.New(flow.UserMessage(err))
	}

	switch route.Path {
	case flow.PathRegister:
		fmt.Fprintf(e.out, "No account uses %s yet. Create one with: gaia register --email %s\n", route.Get("email"), route.Get("email"))
		return nil
	case flow.PathInviteSettings:
		fmt.Fprintln(e.out, "Signed in.")
		return e.open(route.String(), "Finish joining the workspace at")
	}
	if id, err := e.identity(); err == nil {
		fmt.Fprintf(e.out, "Signed in as %s\n", id.AccountID)
	} else {
		fmt.Fprintln(e.out, "Signed in.")
	}
	fmt.Fprintf(e.out, "Continue at %s%s\n", strings.TrimRight(e.cfg.WebURL, "/"), route.String())
	return nil
}

func readLine(e *env) (string, error) {
	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func registerFlags(fs *pflag.FlagSet) {
	fs.String("email", "", "email to register")
}

func runRegister(_ context.Context, e *env, fs *pflag.FlagSet) error {
	email, _ := fs.GetString("email")
	return e.launchTUI(e, flow.NewRoute(flow.PathRegister, "email", email).String())
}

func runLogout(_ context.Context, e *env, _ *pflag.FlagSet) error {
	if _, ok, err := session.Tokens(e.store); err == nil && !ok {
		fmt.Fprintln(e.out, "Already signed out.")
		return nil
	}
	if err := session.ClearTokens(e.store); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	e.log.Info("signed out")
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func runStatus(ctx context.Context, e *env, _ *pflag.FlagSet) error {
	id, err := e.identity()
	if err != nil {
		printSignedOut(e.out)
		return nil
	}
	now := time.Now()
	expiry := "never"
	if !id.ExpiresAt.IsZero() {
		expiry = id.ExpiresAt.Local().Format(time.DateTime)
		if id.Expired(now) {
			expiry += " (expired, run gaia login)"
		}
	}
	pairs := []string{
		"account", id.AccountID.String(),
		"token expires", expiry,
		"console", e.cfg.APIURL,
	}
	if e.admin != nil {
		if st, err := e.admin.CheckinStatus(ctx, id.AccountID); err != nil {
			e.log.Warn("load check-in status", "error", err)
			pairs = append(pairs, "check-in", "unavailable: "+flow.UserMessage(err))
		} else {
			pairs = append(pairs, statusPairs(st)...)
		}
	}
	fmt.Fprintln(e.out, renderKV(pairs...))
	return nil
}

func statusPairs(st *domain.CheckinStatus) []string {
	today := "not yet"
	if st.HasCheckedIn {
		today = "done"
	}
	pairs := []string{
		"checked in today", today,
		"streak", fmt.Sprintf("%d days", st.ConsecutiveDays),
		"available points", formatPoints(st.AvailablePoints),
		"total points", formatPoints(st.TotalPoints),
	}
	if st.LastCheckinDate != nil {
		pairs = append(pairs, "last check-in", *st.LastCheckinDate)
	}
	return pairs
}

func tokenFlags(fs *pflag.FlagSet) {
	fs.Bool("copy", false, "copy the token to the clipboard instead of printing it")
}

func runToken(_ context.Context, e *env, fs *pflag.FlagSet) error {
	t, ok, err := session.Tokens(e.store)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("not signed in, run gaia login")
	}
	if cp, _ := fs.GetBool("copy"); cp {
		if err := e.copyText(t.AccessToken); err != nil {
			return fmt.Errorf("copy token: %w", err)
		}
		fmt.Fprintln(e.out, "Access token copied to clipboard.")
		return nil
	}
	fmt.Fprintln(e.out, t.AccessToken)
	return nil
}

func accountFlags(fs *pflag.FlagSet) {
	fs.String("account", "", "account id (default: the signed-in account)")
}

// account resolves --account, falling back to the signed-in account.
func (e *env) account(fs *pflag.FlagSet) (uuid.UUID, error) {
	if raw, _ := fs.GetString("account"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("--account: %w", err)
		}
		return id, nil
	}
	id, err := e.identity()
	if err != nil {
		return uuid.Nil, err
	}
	return id.AccountID, nil
}

func runCheckin(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	admin, err := e.requireAdmin()
	if err != nil {
		return err
	}
	account, err := e.account(fs)
	if err != nil {
		return err
	}
	res, err := admin.Checkin(ctx, account)
	if err != nil {
		return fmt.Errorf("check-in: %s", flow.UserMessage(err))
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "already checked in today"
		}
		fmt.Fprintln(e.out, msg)
		return nil
	}
	line := fmt.Sprintf("Checked in: +%s points, %d day streak", formatPoints(res.PointsEarned), res.ConsecutiveDays)
	if res.IsBonus {
		line += " (bonus!)"
	}
	fmt.Fprintln(e.out, line)
	fmt.Fprintf(e.out, "Available points: %s\n", formatPoints(res.AvailablePoints))
	return nil
}

func runPoints(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	admin, err := e.requireAdmin()
	if err != nil {
		return err
	}
	account, err := e.account(fs)
	if err != nil {
		return err
	}
	st, err := admin.CheckinStatus(ctx, account)
	if err != nil {
		return fmt.Errorf("points: %s", flow.UserMessage(err))
	}
	pairs := append([]string{"account", account.String()}, statusPairs(st)...)

	if up, err := admin.UserPointsByAccountID(ctx, account); err != nil {
		e.log.Warn("load points balance", "error", err)
	} else {
		pairs = append(pairs, "used points", formatPoints(up.UsedPoints))
	}

	if cfg, err := admin.PointsConfig(ctx); err != nil {
		e.log.Warn("load points config", "error", err)
	} else if days := configValue(cfg, domain.ConfigConsecutiveBonusDays); days > 0 {
		pairs = append(pairs, "bonus progress", domain.BonusProgress(st.ConsecutiveDays, int(days)))
	}
	fmt.Fprintln(e.out, renderKV(pairs...))
	return nil
}

func configValue(cfg []domain.PointsConfig, key string) float64 {
	for _, c := range cfg {
		if c.ConfigKey == key {
			return c.ConfigValue
		}
	}
	return 0
}

func pageFlags(fs *pflag.FlagSet) {
	fs.Int("page", 1, "page number")
	fs.Int("page-size", 20, "rows per page")
}

func page(fs *pflag.FlagSet) client.Page {
	p, _ := fs.GetInt("page")
	size, _ := fs.GetInt("page-size")
	return client.Page{Page: p, PageSize: size}
}

func listFlags(fs *pflag.FlagSet) {
	accountFlags(fs)
	pageFlags(fs)
	fs.Bool("bonus", false, "only bonus check-ins")
}

func runRecords(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	admin, err := e.requireAdmin()
	if err != nil {
		return err
	}
	account, err := e.account(fs)
	if err != nil {
		return err
	}
	f := client.CheckinRecordFilter{Page: page(fs), AccountID: &account}
	if bonus, _ := fs.GetBool("bonus"); bonus {
		f.IsBonus = &bonus
	}
	res, err := admin.ListCheckinRecords(ctx, f)
	if err != nil {
		return fmt.Errorf("records: %s", flow.UserMessage(err))
	}
	rows := make([][]string, 0, len(res.List))
	for _, r := range res.List {
		rows = append(rows, []string{
			r.CheckinDate.Format(time.DateOnly),
			"+" + formatPoints(r.PointsEarned),
			strconv.Itoa(r.ConsecutiveDays),
			yesNo(r.IsBonus),
		})
	}
	fmt.Fprintln(e.out, renderTable([]string{"date", "points", "streak", "bonus"}, rows))
	fmt.Fprintln(e.out, pageFooter(res.Page, res.PageSize, res.Total))
	return nil
}

func exchangeFlags(fs *pflag.FlagSet) {
	accountFlags(fs)
	fs.Float64("points", 0, "points to spend")
	fs.Float64("quota", 0, "quota to receive (default: the server's rate)")
	fs.String("description", "", "note stored with the exchange")
}

func runExchange(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	admin, err := e.requireAdmin()
	if err != nil {
		return err
	}
	cost, _ := fs.GetFloat64("points")
	if cost <= 0 {
		return errors.New("exchange: --points must be positive")
	}
	account, err := e.account(fs)
	if err != nil {
		return err
	}
	req := client.PointsExchangeRequest{
		AccountID:    account,
		ExchangeType: domain.ExchangeTypeQuota,
		PointsCost:   cost,
	}
	req.Description, _ = fs.GetString("description")
	if fs.Changed("quota") {
		q, _ := fs.GetFloat64("quota")
		req.QuotaAmount = &q
	}
	ex, err := admin.ExchangePoints(ctx, req)
	if err != nil {
		return fmt.Errorf("exchange: %s", flow.UserMessage(err))
	}
	quota := "-"
	if ex.QuotaAmount != nil {
		quota = formatPoints(*ex.QuotaAmount)
	}
	fmt.Fprintln(e.out, renderKV(
		"exchange", ex.ID.String(),
		"points spent", formatPoints(ex.PointsCost),
		"quota", quota,
		"status", ex.Status,
	))
	return nil
}

// availabilityClient serves the availability checks, which need no admin token.
func (e *env) availabilityClient() *client.Client {
	if e.admin != nil {
		return e.admin
	}
	return client.New(e.cfg.AdminAPIURL, "", client.WithAdminAuth(), client.WithTimeout(e.cfg.HTTPTimeout))
}

func runCheckEmail(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	email := strings.TrimSpace(fs.Arg(0))
	if !domain.ValidEmail(email) {
		return errors.New("usage: gaia check-email EMAIL")
	}
	free, err := e.availabilityClient().CheckEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check-email: %s", flow.UserMessage(err))
	}
	printAvailability(e, email, free)
	return nil
}

func runCheckUsername(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	name := strings.TrimSpace(fs.Arg(0))
	if name == "" {
		return errors.New("usage: gaia check-username NAME")
	}
	free, err := e.availabilityClient().CheckUsername(ctx, name)
	if err != nil {
		return fmt.Errorf("check-username: %s", flow.UserMessage(err))
	}
	printAvailability(e, name, free)
	return nil
}

func printAvailability(e *env, what string, free bool) {
	if free {
		fmt.Fprintf(e.out, "%s is available\n", what)
		return
	}
	fmt.Fprintf(e.out, "%s is taken\n", what)
}

// open opens route in the browser, printing the URL when that fails.
func (e *env) open(route, label string) error {
	u, err := e.openPage(e.cfg.WebURL, route)
	if err != nil {
		if u == "" {
			return err
		}
		fmt.Fprintf(e.out, "%s %s\n", label, u)
		return nil
	}
	e.log.Debug("opened page", "url", u)
	return nil
}

func openPageCmd(route string) func(context.Context, *env, *pflag.FlagSet) error {
	return func(_ context.Context, e *env, _ *pflag.FlagSet) error {
		return e.open(route, "Could not open a browser. Visit")
	}
}
