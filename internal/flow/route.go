// Package flow drives the console's sign-in and email-verified
// self-registration. Controllers validate input, call the API and answer
// with the Route to show next.
package flow

import (
	"fmt"
	"net/url"
	"time"
)

// Console routes the flow navigates between.
const (
	PathSignIn         = "/signin"
	PathInviteSettings = "/signin/invite-settings"
	PathRegister       = "/register"
	PathCheckCode      = "/register/check-code"
	PathSetInfo        = "/register/set-info"
)

// AutoRedirectDelay is how long the registration success screen stays up.
const AutoRedirectDelay = 3000 * time.Millisecond

// Route is a console location: a path plus its query parameters.
type Route struct {
	Path  string
	Query url.Values
}

// NewRoute builds a Route from alternating key/value pairs. Empty values are
// skipped.
func NewRoute(path string, kv ...string) Route {
	r := Route{Path: path}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Set(kv[i], kv[i+1])
	}
	return r
}

// ParseRoute parses "path?query" as produced by Route.String.
func ParseRoute(s string) (Route, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Route{}, fmt.Errorf("flow.ParseRoute: %w", err)
	}
	r := Route{Path: u.Path}
	if q := u.Query(); len(q) > 0 {
		r.Query = q
	}
	return r, nil
}

// String renders the route with its query URL-encoded.
func (r Route) String() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Get returns the first value of a query parameter.
func (r Route) Get(key string) string {
	return r.Query.Get(key)
}
