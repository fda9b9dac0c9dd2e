package federation

import "errors"

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrInvalidName           = errors.New("invalid player name")
	ErrProviderMisconfigured = errors.New("provider is misconfigured")
)
