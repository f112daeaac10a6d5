package client

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrRejected         = errors.New("request rejected")
	ErrNotFound         = errors.New("not found")
)
