package flow

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gaia-console/gaia/internal/countdown"
	"github.com/gaia-console/gaia/pkg/domain"
)

// Registrar is the part of the console API the registration flow needs.
type Registrar interface {
	SendEmailCode(ctx context.Context, email, locale string) (string, error)
	VerifyEmailCode(ctx context.Context, email, code, token string) (*domain.CodeValidity, error)
	SelfRegister(ctx context.Context, req domain.SelfRegisterRequest) error
}

// Redirect is a navigation that happens once Timer is done.
type Redirect struct {
	Route Route
	Timer countdown.Timer
}

// Registration sequences email entry, code check and account set-up.
// It allows one request at a time; a concurrent call fails with ErrBusy.
type Registration struct {
	api    Registrar
	gate   *countdown.Gate
	locale string
	log    *slog.Logger

	busy atomic.Bool

	mu    sync.Mutex
	state domain.FlowState
	sess  domain.RegistrationSession
	query url.Values // carried from step to step
}

// NewRegistration returns a controller at the email entry step.
func NewRegistration(api Registrar, gate *countdown.Gate, locale string, logger *slog.Logger) *Registration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registration{
		api:    api,
		gate:   gate,
		locale: locale,
		log:    logger.With("component", "registration"),
		state:  domain.StateEmailEntry,
	}
}

// ResumeRegistration rebuilds a controller from a route, as after a restart.
// The cooldown resumes from the store through gate.
func ResumeRegistration(api Registrar, gate *countdown.Gate, locale string, logger *slog.Logger, route Route) (*Registration, error) {
	r := NewRegistration(api, gate, locale, logger)
	r.query = cloneQuery(route.Query)
	email, token := route.Get("email"), route.Get("token")
	switch route.Path {
	case PathRegister:
		r.sess.Email = email
	case PathCheckCode, PathSetInfo:
		if email == "" || token == "" {
			return nil, fmt.Errorf("flow.ResumeRegistration: %s needs email and token", route.Path)
		}
		r.sess = domain.RegistrationSession{Email: email, Token: token}
		r.state = domain.StateCodeCheck
		if route.Path == PathSetInfo {
			r.sess.Verified = true
			r.state = domain.StateSetInfo
		}
	default:
		return nil, fmt.Errorf("flow.ResumeRegistration: not a registration route: %s", route.Path)
	}
	return r, nil
}

// State returns the current step.
func (r *Registration) State() domain.FlowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Session returns a copy of the current registration session.
func (r *Registration) Session() domain.RegistrationSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess
}

// Route returns the route of the current step.
func (r *Registration) Route() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routeLocked()
}

// routeLocked keeps every query parameter the flow was entered with and
// overrides email and token with the session's.
func (r *Registration) routeLocked() Route {
	switch r.state {
	case domain.StateCodeCheck:
		return r.carry(PathCheckCode, r.sess.Token)
	case domain.StateSetInfo:
		return r.carry(PathSetInfo, r.sess.Token)
	case domain.StateDone:
		return NewRoute(PathSignIn)
	}
	return r.carry(PathRegister, "")
}

func (r *Registration) carry(path, token string) Route {
	q := cloneQuery(r.query)
	for k, v := range map[string]string{"email": r.sess.Email, "token": token} {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	if len(q) == 0 {
		q = nil
	}
	return Route{Path: path, Query: q}
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Cooldown returns how long until a new code may be requested.
func (r *Registration) Cooldown() time.Duration {
	left, err := r.gate.Remaining()
	if err != nil {
		r.log.Warn("read resend cooldown", "error", err)
		return 0
	}
	return left
}

func (r *Registration) acquire() error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (r *Registration) release() {
	r.busy.Store(false)
}

// advance applies e to the current state.
func (r *Registration) advance(e domain.FlowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := domain.NextState(r.state, e)
	if err != nil {
		return err
	}
	r.state = next
	return nil
}

// expect fails unless the controller is at step s.
func (r *Registration) expect(s domain.FlowState, e domain.FlowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != s {
		return fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, e, r.state)
	}
	return nil
}

func validateEmail(email string) error {
	switch {
	case email == "":
		return invalid("email", "email is required")
	case !domain.ValidEmail(email):
		return invalid("email", "email is invalid")
	}
	return nil
}

// RequestCode asks for a verification code for email. On success the resend
// cooldown starts over and the returned route is the code check step.
func (r *Registration) RequestCode(ctx context.Context, email string) (Route, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return Route{}, err
	}
	if err := r.acquire(); err != nil {
		return Route{}, err
	}
	defer r.release()
	if err := r.expect(domain.StateEmailEntry, domain.EventCodeIssued); err != nil {
		return Route{}, err
	}

	token, err := r.api.SendEmailCode(ctx, email, r.locale)
	if err != nil {
		r.logFailure("send email code", err)
		return Route{}, fmt.Errorf("flow.RequestCode: %w", err)
	}
	r.startCooldown()

	r.mu.Lock()
	r.sess = domain.RegistrationSession{Email: email, Token: token}
	r.mu.Unlock()
	if err := r.advance(domain.EventCodeIssued); err != nil {
		return Route{}, err
	}
	r.log.Info("verification code sent", "email", email)
	return r.Route(), nil
}

// Resend asks for a new code for the current email. The new continuation
// token replaces the old one.
func (r *Registration) Resend(ctx context.Context) (Route, error) {
	if err := r.acquire(); err != nil {
		return Route{}, err
	}
	defer r.release()
	if err := r.expect(domain.StateCodeCheck, domain.EventCodeReissued); err != nil {
		return Route{}, err
	}
	if left := r.Cooldown(); left > 0 {
		return Route{}, &CooldownError{Remaining: left}
	}

	email := r.Session().Email
	token, err := r.api.SendEmailCode(ctx, email, r.locale)
	if err != nil {
		r.logFailure("resend email code", err)
		return Route{}, fmt.Errorf("flow.Resend: %w", err)
	}
	r.startCooldown()

	r.mu.Lock()
	r.sess.Token = token
	r.mu.Unlock()
	if err := r.advance(domain.EventCodeReissued); err != nil {
		return Route{}, err
	}
	r.log.Info("verification code re-sent", "email", email)
	return r.Route(), nil
}

// Verify checks code. A valid code moves on to account set-up with email and
// token carried over; anything else stays on the code check step.
func (r *Registration) Verify(ctx context.Context, code string) (Route, error) {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return Route{}, invalid("code", "verification code is required")
	case !domain.ValidCode(code):
		return Route{}, invalid("code", "verification code must be 6 digits")
	}
	if err := r.acquire(); err != nil {
		return Route{}, err
	}
	defer r.release()
	if err := r.expect(domain.StateCodeCheck, domain.EventCodeVerified); err != nil {
		return Route{}, err
	}

	sess := r.Session()
	v, err := r.api.VerifyEmailCode(ctx, sess.Email, code, sess.Token)
	if err != nil {
		r.logFailure("verify email code", err)
		if aerr := r.advance(domain.EventCodeRejected); aerr != nil {
			return Route{}, aerr
		}
		return Route{}, fmt.Errorf("flow.Verify: %w", err)
	}
	if !v.IsValid {
		if err := r.advance(domain.EventCodeRejected); err != nil {
			return Route{}, err
		}
		return Route{}, ErrCodeRejected
	}

	r.mu.Lock()
	r.sess.Verified = true
	r.mu.Unlock()
	if err := r.advance(domain.EventCodeVerified); err != nil {
		return Route{}, err
	}
	return r.Route(), nil
}

// Finalize creates the account. Inputs are checked in order and the first
// failure is returned. On success the flow is done and the result is a
// redirect to sign-in due after AutoRedirectDelay.
func (r *Registration) Finalize(ctx context.Context, name, password, confirm string) (Redirect, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Redirect{}, invalid("name", "name is required")
	case password == "":
		return Redirect{}, invalid("password", "password is required")
	case !domain.ValidPassword(password):
		return Redirect{}, invalid("password", passwordRule)
	case password != confirm:
		return Redirect{}, invalid("password_confirm", "passwords do not match")
	}
	if err := r.acquire(); err != nil {
		return Redirect{}, err
	}
	defer r.release()
	if err := r.expect(domain.StateSetInfo, domain.EventAccountCreated); err != nil {
		return Redirect{}, err
	}

	sess := r.Session()
	err := r.api.SelfRegister(ctx, domain.SelfRegisterRequest{
		Token:           sess.Token,
		Name:            name,
		Password:        password,
		PasswordConfirm: confirm,
	})
	if err != nil {
		r.logFailure("self register", err)
		return Redirect{}, fmt.Errorf("flow.Finalize: %w", err)
	}
	if err := r.advance(domain.EventAccountCreated); err != nil {
		return Redirect{}, err
	}
	r.log.Info("account created", "email", sess.Email)
	return Redirect{
		Route: NewRoute(PathSignIn),
		Timer: countdown.NewTimer(AutoRedirectDelay, r.gate.Now),
	}, nil
}

// Restart abandons the current attempt and returns to email entry. The
// cooldown is kept.
func (r *Registration) Restart() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state, _ = domain.NextState(r.state, domain.EventRestart)
	r.sess = domain.RegistrationSession{Email: r.sess.Email}
	return r.routeLocked()
}

func (r *Registration) startCooldown() {
	if _, err := r.gate.Start(); err != nil {
		r.log.Warn("start resend cooldown", "error", err)
	}
}

func (r *Registration) logFailure(op string, err error) {
	logFailure(r.log, op, err)
}

func logFailure(log *slog.Logger, op string, err error) {
	kind := Classify(err)
	if kind == KindTransport {
		log.Error(op+" failed", "kind", kind, "error", err)
		return
	}
	log.Info(op+" refused", "kind", kind, "error", err)
}
