package service

import "errors"

// Error kinds. Every error returned by TriviaService wraps exactly one of these,
// chosen where the failure happens.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
	ErrInternal      = errors.New("internal error")
)
