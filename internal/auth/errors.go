package auth

import "errors"

var (
	// ErrInvalidTicket is returned when the CAS server rejects the service ticket.
	ErrInvalidTicket = errors.New("invalid cas ticket")

	// ErrMissingIdentityHeader is returned when the trusted identity header is absent.
	ErrMissingIdentityHeader = errors.New("missing identity header")

	// ErrUntrustedSource is returned when the configured security header pair does
	// not match, meaning the request did not pass through the authenticating proxy.
	ErrUntrustedSource = errors.New("request did not come from a trusted source")

	// ErrMissingRequiredAttribute is returned when a required attribute header is absent.
	ErrMissingRequiredAttribute = errors.New("missing required attribute")

	// ErrTokenExchangeFailed is returned when the OIDC authorization code exchange fails.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrUserInfoFetchFailed is returned when the OIDC userinfo request fails.
	ErrUserInfoFetchFailed = errors.New("userinfo fetch failed")

	// ErrMissingUsernameClaim is returned when the configured username claim is
	// absent from the userinfo response.
	ErrMissingUsernameClaim = errors.New("missing username claim")

	// ErrAccountDisabled is returned when attempting to authenticate a disabled account.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUserNotFound is returned when no account matches the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned when the provided password is incorrect.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUsernameExists is returned when creating an account whose username is taken.
	ErrUsernameExists = errors.New("account with this username already exists")

	// ErrLocalDisabled is returned when local authentication is disabled via configuration.
	ErrLocalDisabled = errors.New("local authentication is disabled")

	// ErrCASDisabled is returned when CAS authentication is disabled via configuration.
	ErrCASDisabled = errors.New("cas authentication is disabled")

	// ErrShibbolethDisabled is returned when Shibboleth authentication is disabled via configuration.
	ErrShibbolethDisabled = errors.New("shibboleth authentication is disabled")

	// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")

	// ErrOIDCNotConfigured is returned when neither a discovery URL nor the full
	// set of explicit endpoints is configured.
	ErrOIDCNotConfigured = errors.New("oidc endpoints are not configured")
)
