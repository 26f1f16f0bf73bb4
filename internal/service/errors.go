package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// ValidationError is a client-fixable input problem. It matches ErrValidation
// under errors.Is and its message is safe to show to the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// storeErr maps anything the store returned that is not a domain outcome.
func storeErr(err error, op string) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return invalid("account does not exist")
	}
	return errors.Wrapf(ErrStoreUnavailable, "%s: %v", op, err)
}
