package service

import (
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
)

// PasswordScheme decides how a password is persisted and checked.
type PasswordScheme interface {
	Hash(pass string) (string, error)
	Check(stored, pass string) bool
}

func NewPasswordScheme(cfg *config.Config) (PasswordScheme, error) {
	switch cfg.PasswordScheme {
	case config.PasswordSchemePlain:
		return PlainPasswords{}, nil
	case config.PasswordSchemeBcrypt:
		return BcryptPasswords{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, errors.Errorf("unknown password scheme %q", cfg.PasswordScheme)
	}
}

// PlainPasswords stores the password as given.
type PlainPasswords struct{}

func (PlainPasswords) Hash(pass string) (string, error) {
	return pass, nil
}

func (PlainPasswords) Check(stored, pass string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pass)) == 1
}

type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), b.Cost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (b BcryptPasswords) Check(stored, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pass)) == nil
}
