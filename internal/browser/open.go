// Package browser opens console pages in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Console pages reachable from the terminal.
const (
	PageTerms   = "/terms"
	PagePrivacy = "/privacy"
)

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// PageURL joins a console route such as "/signin/invite-settings?x=1" onto the
// web root. Only http(s) roots are accepted.
func PageURL(webURL, route string) (string, error) {
	base, err := url.Parse(strings.TrimRight(webURL, "/"))
	if err != nil {
		return "", fmt.Errorf("browser.PageURL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("browser.PageURL: unsupported scheme %q", base.Scheme)
	}
	ref, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("browser.PageURL: %w", err)
	}
	base.Path += "/" + strings.TrimLeft(ref.Path, "/")
	base.RawQuery = ref.RawQuery
	return base.String(), nil
}

// OpenPage opens route under webURL, returning the URL so callers can print
// it when no browser is available.
func OpenPage(webURL, route string) (string, error) {
	u, err := PageURL(webURL, route)
	if err != nil {
		return "", err
	}
	return u, Open(u)
}
