package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrItemOutOfStock   = errors.New("item out of stock")
	ErrInvalidUsername  = errors.New("invalid minecraft username")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrCannotDeleteSelf = errors.New("cannot delete yourself")
	ErrDuplicate        = errors.New("document already exists")
)
