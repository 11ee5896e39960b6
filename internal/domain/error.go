package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrCredentialExpired  = errors.New("marketplace credential expired")
	ErrCredentialNoExpiry = errors.New("marketplace credential carries no expiry claim")
	ErrNoReplyProduced    = errors.New("no reply produced")
)
