package slintrust

import "errors"

var (
	ErrBadConfig     = errors.New("bad config")
	ErrExists        = errors.New("already exists")
	ErrMissingData   = errors.New("missing data")
	ErrNotConnected  = errors.New("not connected")
	ErrNotFound      = errors.New("not found")
	ErrNotValid      = errors.New("invalid")
	ErrUnaddressable = errors.New("unaddressable")
	ErrUnexpected    = errors.New("unexpected error")
)
