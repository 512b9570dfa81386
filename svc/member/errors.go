package member

import "errors"

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrEmailTaken         = errors.New("member email already registered")
	ErrInvalidIdentifier  = errors.New("invalid member identifier")
	ErrNoMemberInContext  = errors.New("no member in context")
	ErrFailedToCreate     = errors.New("failed to create member")
	ErrFailedToGet        = errors.New("failed to get member")
	ErrProviderIsRequired = errors.New("member provider is required")
)
