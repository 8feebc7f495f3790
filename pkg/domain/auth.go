package domain

// Result values carried in the console envelope.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// Business codes the console returns alongside a failed result.
const (
	CodeAccountAlreadyExists = "account_already_exists"
	CodeAccountNotFound      = "account_not_found"
)

// Credentials are held only for the duration of a sign-in submission.
type Credentials struct {
	Email    string
	Password string
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Language    string `json:"language"`
	RememberMe  bool   `json:"remember_me"`
	InviteToken string `json:"invite_token,omitempty"`
}

// AuthTokens is the token pair issued on a successful sign-in.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Availability is the answer to a username or email availability check.
type Availability struct {
	Available bool `json:"available"`
}
