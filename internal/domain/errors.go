package domain

import "errors"

// Domain errors.
var (
	ErrLoginFailed        = errors.New("login failed")
	ErrNotAuthenticated   = errors.New("not authenticated (login first)")
	ErrNoTaskID           = errors.New("task has no usable identifier")
	ErrNoClaimRecord      = errors.New("no claimed task is being tracked")
	ErrMissingCredentials = errors.New("email and password are required (set [api] in fluxbot.toml or FLUXBOT_EMAIL/FLUXBOT_PASSWORD)")
	ErrMissingNotifyURL   = errors.New("notification URL is not configured")
)
