package auth

import "errors"

var (
	// ErrTokenExpired reports a token presented after its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid reports a token whose signature or structure does not
	// verify.
	ErrTokenInvalid = errors.New("could not validate credentials")
	// ErrWrongTokenPurpose reports a token whose purpose tag does not match
	// the operation (e.g. a refresh token presented for API access).
	ErrWrongTokenPurpose = errors.New("invalid token type")
	// ErrUnknownIdentity reports a token whose subject resolves to no known
	// user.
	ErrUnknownIdentity = errors.New("user not found")
	// ErrInactiveAccount reports an authenticated but non-active account.
	ErrInactiveAccount = errors.New("user account is inactive")
	// ErrInsufficientPermissions reports a caller below the required role.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	// ErrCredentialMismatch is the single login failure: it is reported
	// identically for unknown accounts and wrong passwords so callers cannot
	// enumerate users.
	ErrCredentialMismatch = errors.New("incorrect username/email or password")
	// ErrPasswordTooLong reports a password exceeding the bcrypt input limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)
