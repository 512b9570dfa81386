package subscription

import "errors"

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrFailedToCreate  = errors.New("failed to create subscription")
	ErrFailedToGet     = errors.New("failed to get subscription")
	ErrFailedToUpdate  = errors.New("failed to update subscription")
	ErrNothingToUpdate = errors.New("no subscription fields to update")
)
