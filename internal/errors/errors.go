package errors

import (
	"errors"
)

var (
	ErrNilUpdate     = errors.New("nil update")
	ErrNilChatOrUser = errors.New("nil chat or user")
	ErrNoPrivileges  = errors.New("not enough rights")
	ErrEmptyMessage  = errors.New("empty message")
)
