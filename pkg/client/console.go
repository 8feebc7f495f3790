package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gaia-console/gaia/pkg/domain"
)

const (
	pathSendEmailCode = "/user/sendEmailCode"
	pathVerifyCode    = "/register/validity"
	pathSelfRegister  = "/user/selfRegister"
	pathCheckUsername = "/user/checkUsername"
	pathCheckEmail    = "/user/checkEmail"
	pathLogin         = "/login"
)

// SendEmailCode asks the server to mail a registration code to email and
// returns the continuation token for the following steps. An address that is
// already registered fails with an *APIError coded account_already_exists.
func (c *Client) SendEmailCode(ctx context.Context, email, locale string) (string, error) {
	body := map[string]string{"email": email, "language": locale}
	var token string
	if err := c.consoleCall(ctx, http.MethodPost, pathSendEmailCode, body, &token); err != nil {
		return "", fmt.Errorf("client.SendEmailCode: %w", err)
	}
	return token, nil
}

// VerifyEmailCode checks a registration code against the continuation token.
func (c *Client) VerifyEmailCode(ctx context.Context, email, code, token string) (*domain.CodeValidity, error) {
	body := map[string]string{"email": email, "code": code, "token": token}
	var v domain.CodeValidity
	if err := c.post(ctx, pathVerifyCode, body, &v); err != nil {
		return nil, fmt.Errorf("client.VerifyEmailCode: %w", err)
	}
	return &v, nil
}

// SelfRegister creates the account for a verified continuation token.
func (c *Client) SelfRegister(ctx context.Context, req domain.SelfRegisterRequest) error {
	if err := c.consoleCall(ctx, http.MethodPost, pathSelfRegister, req, nil); err != nil {
		return fmt.Errorf("client.SelfRegister: %w", err)
	}
	return nil
}

// Login signs in with email and password and returns the issued token pair.
// An unknown address fails with an *APIError coded account_not_found.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthTokens, error) {
	var tokens domain.AuthTokens
	if err := c.consoleCall(ctx, http.MethodPost, pathLogin, req, &tokens); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &tokens, nil
}

// CheckUsername reports whether username is still free.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	params := url.Values{}
	params.Set("username", username)

	var a domain.Availability
	if err := c.adminCall(ctx, http.MethodGet, pathCheckUsername+"?"+params.Encode(), nil, &a); err != nil {
		return false, fmt.Errorf("client.CheckUsername: %w", err)
	}
	return a.Available, nil
}

// CheckEmail reports whether email is not yet registered.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	params := url.Values{}
	params.Set("email", email)

	var a domain.Availability
	if err := c.adminCall(ctx, http.MethodGet, pathCheckEmail+"?"+params.Encode(), nil, &a); err != nil {
		return false, fmt.Errorf("client.CheckEmail: %w", err)
	}
	return a.Available, nil
}
