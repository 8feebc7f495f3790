package domain

import (
	"errors"
	"fmt"
)

// RegistrationSession is the client-side state of one self-registration attempt.
// Token is the server-issued continuation token; it is forwarded verbatim and
// replaced whenever a code is re-sent.
type RegistrationSession struct {
	Email    string
	Token    string
	Verified bool
}

// SelfRegisterRequest is the payload that finalizes a registration.
type SelfRegisterRequest struct {
	Token           string `json:"token"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// CodeValidity is the server's answer to a verification code check.
type CodeValidity struct {
	IsValid bool   `json:"is_valid"`
	Email   string `json:"email,omitempty"`
}

// FlowState is a step of the registration flow.
type FlowState int

const (
	StateEmailEntry FlowState = iota
	StateCodeCheck
	StateSetInfo
	StateDone
)

func (s FlowState) String() string {
	switch s {
	case StateEmailEntry:
		return "email-entry"
	case StateCodeCheck:
		return "code-check"
	case StateSetInfo:
		return "set-info"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("FlowState(%d)", int(s))
}

// FlowEvent is something that happened during the registration flow.
type FlowEvent int

const (
	EventCodeIssued FlowEvent = iota
	EventCodeReissued
	EventCodeVerified
	EventCodeRejected
	EventAccountCreated
	EventRestart
)

func (e FlowEvent) String() string {
	switch e {
	case EventCodeIssued:
		return "code-issued"
	case EventCodeReissued:
		return "code-reissued"
	case EventCodeVerified:
		return "code-verified"
	case EventCodeRejected:
		return "code-rejected"
	case EventAccountCreated:
		return "account-created"
	case EventRestart:
		return "restart"
	}
	return fmt.Sprintf("FlowEvent(%d)", int(e))
}

// ErrInvalidTransition is returned by NextState for an event that is not
// allowed in the current state.
var ErrInvalidTransition = errors.New("invalid registration transition")

// NextState returns the state that follows s when e occurs.
// Restart is allowed from every state and returns to email entry.
func NextState(s FlowState, e FlowEvent) (FlowState, error) {
	if e == EventRestart {
		return StateEmailEntry, nil
	}
	switch s {
	case StateEmailEntry:
		if e == EventCodeIssued {
			return StateCodeCheck, nil
		}
	case StateCodeCheck:
		switch e {
		case EventCodeReissued, EventCodeRejected:
			return StateCodeCheck, nil
		case EventCodeVerified:
			return StateSetInfo, nil
		}
	case StateSetInfo:
		if e == EventAccountCreated {
			return StateDone, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
