package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/gaia-console/gaia/internal/session"
	"github.com/gaia-console/gaia/pkg/client"
	"github.com/gaia-console/gaia/pkg/domain"
)

const passwordRule = "password must be at least 8 characters and contain letters and digits"

// DefaultLandingPath is where a sign-in lands without a deferred redirect.
const DefaultLandingPath = "/explore/apps"

// Authenticator is the part of the console API the sign-in needs.
type Authenticator interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthTokens, error)
}

// SignInConfig tunes a SignIn controller.
type SignInConfig struct {
	Locale      string
	LandingPath string
	// AllowRegistration is the site's self-registration setting. An unknown
	// account is sent to registration whatever its value.
	AllowRegistration bool
	// WebURL is the console's base URL. A deferred redirect to any other
	// host is dropped.
	WebURL string
	Logger *slog.Logger
}

// SignIn submits credentials and decides where to go afterwards.
type SignIn struct {
	api   Authenticator
	store session.Store
	cfg   SignInConfig
	log   *slog.Logger

	busy atomic.Bool
}

// NewSignIn returns a sign-in controller persisting tokens to store.
func NewSignIn(api Authenticator, store session.Store, cfg SignInConfig) *SignIn {
	if cfg.LandingPath == "" {
		cfg.LandingPath = DefaultLandingPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SignIn{api: api, store: store, cfg: cfg, log: logger.With("component", "signin")}
}

// RegistrationAllowed reports the site's self-registration setting.
func (s *SignIn) RegistrationAllowed() bool {
	return s.cfg.AllowRegistration
}

// Login signs in with creds. params is the query of the sign-in route; an
// invite_token in it switches to invite mode.
//
// On success the token pair is stored and the route is the invite settings
// page in invite mode, else the deferred redirect if one is stored, else the
// landing page. An unknown account routes to registration with the email
// filled in and no error.
func (s *SignIn) Login(ctx context.Context, creds domain.Credentials, params url.Values) (Route, error) {
	email := strings.TrimSpace(creds.Email)
	if err := validateEmail(email); err != nil {
		return Route{}, err
	}
	switch {
	case creds.Password == "":
		return Route{}, invalid("password", "password is required")
	case !domain.ValidPassword(creds.Password):
		return Route{}, invalid("password", passwordRule)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Route{}, ErrBusy
	}
	defer s.busy.Store(false)

	inviteToken := params.Get("invite_token")
	tokens, err := s.api.Login(ctx, domain.LoginRequest{
		Email:       email,
		Password:    creds.Password,
		Language:    s.cfg.Locale,
		RememberMe:  true,
		InviteToken: inviteToken,
	})
	if err != nil {
		if client.IsCode(err, domain.CodeAccountNotFound) {
			s.log.Info("unknown account, continuing to registration",
				"email", email, "allow_registration", s.cfg.AllowRegistration)
			return NewRoute(PathRegister, "email", email), nil
		}
		logFailure(s.log, "login", err)
		if Classify(err) == KindBusiness {
			return Route{}, newLoginError(err)
		}
		return Route{}, fmt.Errorf("flow.Login: %w", err)
	}

	if err := session.SaveTokens(s.store, *tokens); err != nil {
		return Route{}, fmt.Errorf("flow.Login: %w", err)
	}
	s.log.Info("signed in", "email", email, "invite", inviteToken != "")

	if inviteToken != "" {
		return Route{Path: PathInviteSettings, Query: params}, nil
	}
	target, ok, err := session.TakeRedirect(s.store)
	if err != nil {
		s.log.Warn("read deferred redirect", "error", err)
	}
	if ok {
		if r, ok := s.deferredRoute(target); ok {
			return r, nil
		}
	}
	return NewRoute(s.cfg.LandingPath), nil
}

// deferredRoute turns a stored redirect into a console route. Absolute
// targets are only followed when they point at WebURL's host.
func (s *SignIn) deferredRoute(target string) (Route, bool) {
	u, err := url.Parse(target)
	if err != nil {
		s.log.Warn("ignoring malformed deferred redirect", "target", target)
		return Route{}, false
	}
	if u.Scheme != "" || u.Host != "" {
		site, err := url.Parse(s.cfg.WebURL)
		if err != nil || site.Host == "" || !strings.EqualFold(u.Host, site.Host) {
			s.log.Warn("ignoring off-site deferred redirect", "target", target)
			return Route{}, false
		}
	}
	r := Route{Path: u.Path}
	if r.Path == "" {
		r.Path = s.cfg.LandingPath
	}
	if q := u.Query(); len(q) > 0 {
		r.Query = q
	}
	return r, true
}

func newLoginError(err error) *LoginError {
	lerr := &LoginError{Code: client.ErrorCode(err), Err: err}
	var apiErr *client.APIError
	var httpErr *client.HTTPError
	switch {
	case errors.As(err, &apiErr):
		lerr.Data = apiErr.DataText()
		if lerr.Data == "" {
			lerr.Data = apiErr.Message
		}
	case errors.As(err, &httpErr):
		lerr.Data = httpErr.Message
	}
	return lerr
}
