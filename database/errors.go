package database

import "errors"

var (
	// ErrNotFound is returned when a tenant-scoped lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrConversationConflict is returned when a conversation was modified after it was read.
	ErrConversationConflict = errors.New("conversation was modified concurrently")
)
