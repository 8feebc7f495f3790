package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/pflag"

	"github.com/gaia-console/gaia/internal/browser"
	"github.com/gaia-console/gaia/internal/config"
	"github.com/gaia-console/gaia/internal/logging"
	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what a command runs against.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	store   session.Store
	console *client.Client

	// admin is nil when no admin token is configured.
	admin *client.Client

	stdin io.Reader
	out   io.Writer

	openPage  func(webURL, route string) (string, error)
	copyText  func(string) error
	launchTUI func(e *env, start string) error
}

// Swapped out in tests.
var (
	openPage  = browser.OpenPage
	copyText  = clipboard.WriteAll
	launchTUI = startTUI
)

type command struct {
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, e *env, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"":               {run: runTUI},
	"login":          {flags: loginFlags, run: runLogin},
	"register":       {flags: registerFlags, run: runRegister},
	"logout":         {run: runLogout},
	"status":         {run: runStatus},
	"token":          {flags: tokenFlags, run: runToken},
	"checkin":        {flags: accountFlags, run: runCheckin},
	"points":         {flags: accountFlags, run: runPoints},
	"records":        {flags: listFlags, run: runRecords},
	"exchange":       {flags: exchangeFlags, run: runExchange},
	"check-email":    {run: runCheckEmail},
	"check-username": {run: runCheckUsername},
	"admin":          {flags: adminFlags, run: runAdmin},
	"terms":          {run: openPageCmd(browser.PageTerms)},
	"privacy":        {run: openPageCmd(browser.PagePrivacy)},
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	name, rest := "", args
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, rest = args[0], args[1:]
	}
	switch name {
	case "version":
		fmt.Fprintln(stdout, "gaia "+version)
		return nil
	case "help":
		printHelp(stdout)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, see gaia help", name)
	}
	fs := pflag.NewFlagSet("gaia "+name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	config.RegisterFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "print the version")
	showHelp := fs.BoolP("help", "h", false, "show help")
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", strings.TrimSpace("gaia "+name), err)
	}
	switch {
	case *showVersion:
		fmt.Fprintln(stdout, "gaia "+version)
		return nil
	case *showHelp:
		printHelp(stdout)
		return nil
	}

	e, closeEnv, err := setup(fs, stdin, stdout)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	e.log.Debug("command", "name", name, "args", fs.Args())
	return cmd.run(ctx, e, fs)
}

// setup loads config, opens the state store and log, and builds the clients.
func setup(fs *pflag.FlagSet, stdin io.Reader, stdout io.Writer) (*env, func(), error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}

	logFile, err := os.OpenFile(cfg.StatePath("gaia.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, logFile)

	store, err := session.Open(cfg.StatePath("state.db"))
	if err != nil {
		logFile.Close() //nolint:errcheck
		return nil, nil, err
	}

	e := &env{
		cfg:       cfg,
		log:       logger,
		store:     store,
		stdin:     stdin,
		out:       stdout,
		openPage:  openPage,
		copyText:  copyText,
		launchTUI: launchTUI,
	}
	e.buildClients()

	closeEnv := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close state store", "error", err)
		}
		logFile.Close() //nolint:errcheck
	}
	return e, closeEnv, nil
}

// buildClients (re)creates the API clients from the config and stored tokens.
func (e *env) buildClients() {
	token := ""
	if t, ok, err := session.Tokens(e.store); err != nil {
		e.log.Warn("read stored tokens", "error", err)
	} else if ok {
		token = t.AccessToken
	}
	e.console = client.New(e.cfg.APIURL, token, client.WithTimeout(e.cfg.HTTPTimeout))
	e.admin = nil
	if e.cfg.AdminToken != "" {
		e.admin = client.New(e.cfg.AdminAPIURL, e.cfg.AdminToken, client.WithAdminAuth(), client.WithTimeout(e.cfg.HTTPTimeout))
	}
}

var errNoAdminToken = errors.New("this command needs an admin token, set GAIA_TOKEN or TOKEN in config.yaml")

func (e *env) requireAdmin() (*client.Client, error) {
	if e.admin == nil {
		return nil, errNoAdminToken
	}
	return e.admin, nil
}
