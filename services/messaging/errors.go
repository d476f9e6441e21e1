package messaging

import (
	"errors"

	"hotelbot/services/guardrail"
)

var (
	// ErrUnknownTenant means no tenant owns the inbound account identifier.
	ErrUnknownTenant = errors.New("unknown messaging account")
	// ErrRateLimited means the sender exceeded the inbound limit.
	ErrRateLimited = guardrail.ErrRateLimited
)
