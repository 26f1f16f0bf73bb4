package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
)

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 6

type Accounts struct {
	db           *gorm.DB
	passwords    PasswordScheme
	emailPattern *regexp.Regexp
	logger       *zap.SugaredLogger
}

func NewAccounts(cfg *config.Config, gdb *gorm.DB, passwords PasswordScheme, l *zap.SugaredLogger) (*Accounts, error) {
	pattern, err := regexp.Compile(cfg.EmailPattern)
	if err != nil {
		return nil, errors.Wrap(err, "compile email pattern")
	}
	return &Accounts{
		db:           gdb,
		passwords:    passwords,
		emailPattern: pattern,
		logger:       l,
	}, nil
}

func (s *Accounts) Register(ctx context.Context, name, email, pass string) (uint64, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || pass == "" {
		return 0, invalid("name, email and password are required")
	}
	if utf8.RuneCountInString(pass) < MinPasswordLength {
		return 0, invalid("password must be at least 6 characters long")
	}
	if !s.emailPattern.MatchString(email) {
		return 0, invalid("email has an invalid format")
	}

	hash, err := s.passwords.Hash(pass)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}

	account := db.Account{
		Name:     name,
		Email:    email,
		Password: hash,
	}
	res := s.db.WithContext(ctx).Create(&account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return 0, errors.Wrapf(ErrDuplicate, "email %s", email)
		}
		return 0, storeErr(res.Error, "create account")
	}

	s.logger.Infow("account registered", "account_id", account.ID)
	return account.ID, nil
}

// Authenticate returns the account with its password blanked out.
func (s *Accounts) Authenticate(ctx context.Context, email, pass string) (*db.Account, error) {
	if email == "" || pass == "" {
		return nil, invalid("email and password are required")
	}

	account := db.Account{}
	res := s.db.WithContext(ctx).Where("email = ?", email).First(&account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(res.Error, "find account")
	}

	if !s.passwords.Check(account.Password, pass) {
		return nil, ErrInvalidCredentials
	}

	account.Password = ""
	return &account, nil
}

func (s *Accounts) VerifyEmailExists(ctx context.Context, email string) error {
	if email == "" {
		return invalid("email is required")
	}

	var count int64
	res := s.db.WithContext(ctx).Model(&db.Account{}).Where("email = ?", email).Count(&count)
	if res.Error != nil {
		return storeErr(res.Error, "count accounts")
	}
	if count == 0 {
		return errors.Wrapf(ErrNotFound, "email %s", email)
	}
	return nil
}

func (s *Accounts) ResetPassword(ctx context.Context, email, newPass string) error {
	if email == "" || utf8.RuneCountInString(newPass) < MinPasswordLength {
		return invalid("invalid data or password too short")
	}

	hash, err := s.passwords.Hash(newPass)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	res := s.db.WithContext(ctx).Model(&db.Account{}).Where("email = ?", email).Update("password", hash)
	if res.Error != nil {
		return storeErr(res.Error, "update password")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "email %s", email)
	}

	s.logger.Infow("password reset", "rows", res.RowsAffected)
	return nil
}
