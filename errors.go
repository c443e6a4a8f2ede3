package academy

import "errors"

var (
	// ErrNoWallet is returned by wallet operations when no signing key is configured
	ErrNoWallet = errors.New("no wallet key configured (set ACADEMY_PRIVATE_KEY)")

	// ErrNotStarted is returned when the session was used before Start
	ErrNotStarted = errors.New("client not started")
)
