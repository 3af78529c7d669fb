package app

import "errors"

// Application-level errors.
var (
	ErrInvalidDate         = errors.New("invalid send date")
	ErrInvalidAddress      = errors.New("invalid subscriber address")
	ErrAlreadySubscribed   = errors.New("address is already subscribed")
	ErrAlreadyUnsubscribed = errors.New("subscriber is already unsubscribed")
)
