package svc

import "errors"

var (
	ErrNoFeedsEnabled = errors.New("no exchange feeds enabled")
	ErrNoGateway      = errors.New("no storage backend enabled")
)
