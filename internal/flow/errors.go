package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/gaia-console/gaia/internal/countdown"
	"github.com/gaia-console/gaia/pkg/client"
	"github.com/gaia-console/gaia/pkg/domain"
)

var (
	// ErrBusy is returned when a controller already has a request in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrCodeRejected is returned when the server says a verification code is wrong.
	ErrCodeRejected = errors.New("verification code is invalid or expired")
)

// ValidationError is a client-side input check that failed. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// CooldownError is returned by Resend while the resend gate is closed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another code", countdown.Seconds(e.Remaining))
}

// LoginError is a sign-in the server refused for a reason other than an
// unknown account.
type LoginError struct {
	Data string
	Code string
	Err  error
}

func (e *LoginError) Error() string {
	data := e.Data
	if data == "" {
		data = "unknown error"
	}
	code := e.Code
	if code == "" {
		code = "none"
	}
	return fmt.Sprintf("login failed: %s (code: %s)", data, code)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// ErrorKind says who is responsible for an error.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindValidation: the input was rejected before any request.
	KindValidation
	// KindBusiness: the server answered and said no.
	KindBusiness
	// KindTransport: the request did not produce a usable answer.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindTransport:
		return "transport"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Classify sorts err into an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var verr *ValidationError
	var cerr *CooldownError
	if errors.As(err, &verr) || errors.As(err, &cerr) ||
		errors.Is(err, ErrBusy) || errors.Is(err, domain.ErrInvalidTransition) {
		return KindValidation
	}
	if errors.Is(err, ErrCodeRejected) {
		return KindBusiness
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return KindBusiness
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code != "" {
		return KindBusiness
	}
	return KindTransport
}

// UserMessage returns the text to show for err. Every kind gets one.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var cerr *CooldownError
	if errors.As(err, &cerr) {
		return cerr.Error()
	}
	var lerr *LoginError
	if errors.As(err, &lerr) {
		return lerr.Error()
	}
	switch {
	case errors.Is(err, ErrBusy):
		return "please wait for the current request to finish"
	case errors.Is(err, ErrCodeRejected):
		return ErrCodeRejected.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return "this step is not available right now, start again"
	case client.IsCode(err, domain.CodeAccountAlreadyExists):
		return "an account with this email already exists"
	}

	if Classify(err) == KindBusiness {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				return apiErr.Message
			}
			if text := apiErr.DataText(); text != "" {
				return text
			}
			return "request failed (code: " + apiErr.Code + ")"
		}
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return httpErr.Message
		}
		return "request failed (code: " + client.ErrorCode(err) + ")"
	}
	return "network error, please try again"
}
