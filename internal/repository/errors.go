package repository

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrQuotaExceeded  = errors.New("todo quota exceeded")
	ErrWindowConflict = errors.New("subscription window changed concurrently")
)

type rowScanner interface {
	Scan(dest ...any) error
}
