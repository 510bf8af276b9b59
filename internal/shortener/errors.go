package shortener

import "errors"

var (
	ErrNotFound          = errors.New("short url not found")
	ErrExpired           = errors.New("short url has expired")
	ErrAlreadyExists     = errors.New("short code already exists")
	ErrForbidden         = errors.New("operation not allowed for this user")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrCacheMiss         = errors.New("cache miss")
)
