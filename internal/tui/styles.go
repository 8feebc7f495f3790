package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the GAIA logo. The same tick drives countdown redraws.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "G A I A" as a wave of light running from deep
// teal (#123a3a) to bright aqua (#5eead4).
func renderShimmerLogo(frame int) string {
	const text = "GAIA"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(18 + b*(94-18))
		g := clampByte(58 + b*(234-58))
		bl := clampByte(58 + b*(212-58))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2dd4bf"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5eead4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#2dd4bf")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e2a2a")).
			Padding(1, 3)
)

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into a help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// noticeLine renders a status message: errors in red, anything else in green.
func noticeLine(notice string, err error) string {
	if err != nil {
		return errorStyle.Render(notice)
	}
	if notice == "" {
		return ""
	}
	return successStyle.Render(notice)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	route string
}

var helpItems = []helpItem{
	{"Terms of Service", "/terms"},
	{"Privacy Policy", "/privacy"},
	{"Open console", "/"},
}

// helpView renders the help overlay with a cursor over the links.
func helpView(webURL string, cursor int) string {
	title := titleStyle.Render("G A I A")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	pickStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5eead4"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"gaia", "Sign in, register, check in"},
		{"gaia login", "Sign in without the interface"},
		{"gaia register", "Create an account"},
		{"gaia checkin", "Check in for today's points"},
		{"gaia logout", "Clear your session"},
		{"gaia help", "List every command"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-16s", item.label))
		prefix := "    "
		if i == cursor {
			label = pickStyle.Render(fmt.Sprintf("%-16s", item.label))
			prefix = "  > "
		}
		desc := strings.TrimRight(webURL, "/") + item.route
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(desc))
	}
	return b.String()
}
