package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var signedOutHints = [...]string{
	"Your streak is waiting for today's check-in.",
	"Points do not collect themselves. Sign in to check in.",
	"One sign-in, one check-in, one more day on the streak.",
	"The console remembers your streak. It does not remember your password.",
	"New here? gaia register takes about a minute and one e-mail.",
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5eead4")).
		Bold(true).
		Render("G A I A")

	section := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	groups := []struct {
		name     string
		commands []struct{ cmd, desc string }
	}{
		{"Account", []struct{ cmd, desc string }{
			{"gaia", "Sign in, register and check in (interactive)"},
			{"gaia login", "Sign in (--email, --password-stdin, --invite-token)"},
			{"gaia register", "Create an account with e-mail verification"},
			{"gaia logout", "Clear the stored session"},
			{"gaia status", "Show the signed-in account"},
			{"gaia token", "Print the access token (--copy)"},
			{"gaia check-email E", "Is an e-mail address still free?"},
			{"gaia check-username U", "Is a username still free?"},
		}},
		{"Points (needs GAIA_TOKEN)", []struct{ cmd, desc string }{
			{"gaia checkin", "Check in for today"},
			{"gaia points", "Streak and balance"},
			{"gaia records", "Check-in history (--page, --bonus)"},
			{"gaia exchange", "Spend points on quota (--points N, --quota Q)"},
			{"gaia admin stats", "Points system overview"},
			{"gaia admin config", "List points settings"},
			{"gaia admin set-config K V", "Change a points setting"},
			{"gaia admin adjust", "Credit or debit an account (--account, --points, --description)"},
			{"gaia admin users", "Balances of all accounts"},
			{"gaia admin transactions", "Points ledger (--account, --type)"},
			{"gaia admin exchanges", "Redemptions (--account, --type, --status)"},
		}},
		{"Other", []struct{ cmd, desc string }{
			{"gaia terms", "Terms of Service"},
			{"gaia privacy", "Privacy Policy"},
			{"gaia version", "Show version"},
			{"gaia help", "You are here"},
		}},
	}

	fmt.Fprintf(w, "\n  %s\n", title)
	for _, g := range groups {
		fmt.Fprintf(w, "\n  %s\n", section.Render(g.name))
		for _, c := range g.commands {
			fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
		}
	}
	flags := descStyle.Render("Global flags: --api-url, --locale, --log-level, --state-dir (or GAIA_* environment variables)")
	fmt.Fprintf(w, "\n  %s\n\n", flags)
}

func printSignedOut(w io.Writer) {
	msg := signedOutHints[rand.IntN(len(signedOutHints))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5eead4")).
		Bold(true).
		Render("GAIA")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Not signed in. To sign in: gaia login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
