package domain

import "errors"

var (
	ErrNegativeAmount = errors.New("vouch amount must be non-negative")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
