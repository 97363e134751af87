package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidRefreshToken  = errors.New("Invalid refresh token")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrDemoKeyExists        = errors.New("demo key already exists")
	ErrDemoKeyNotFound      = errors.New("demo key not found")
	ErrRateLimited          = errors.New("too many requests")
)

// DemoAccessError reports why a demo redemption was refused. The boundary
// distinguishes the cases by message, not by subtype.
type DemoAccessError struct {
	Reason string
}

func (e *DemoAccessError) Error() string {
	return e.Reason
}

// NewDemoAccessError wraps a human-readable refusal reason.
func NewDemoAccessError(reason string) *DemoAccessError {
	return &DemoAccessError{Reason: reason}
}

// IsDemoAccessError reports whether err is a demo redemption refusal.
func IsDemoAccessError(err error) bool {
	var dae *DemoAccessError
	return errors.As(err, &dae)
}
