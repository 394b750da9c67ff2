package util

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailRegistered = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrTestHasResults  = fmt.Errorf("%w: test already has results", ErrConflict)
	ErrInvalidOption   = fmt.Errorf("%w: option must be one of A, B, C, D", ErrInvalidArgument)
)

// NotFoundError 记录缺失的实体类型（Test / Question / User）
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NewNotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// MissingEntity 返回 err 链中缺失的实体类型，不是 NotFoundError 时返回空串
func MissingEntity(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Entity
	}
	return ""
}
