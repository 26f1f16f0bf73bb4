package db

import (
	"database/sql/driver"
	"fmt"

	"github.com/pkg/errors"
)

// Category is the list a movie occupies for an account. The three values are
// mutually exclusive per (account, movie) pair.
type Category string

const (
	CategoryToWatch  Category = "to_watch"
	CategoryWatched  Category = "watched"
	CategoryFavorite Category = "favorite"
)

var ErrUnknownCategory = errors.New("unknown list category")

var Categories = []Category{CategoryToWatch, CategoryWatched, CategoryFavorite}

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryToWatch, CategoryWatched, CategoryFavorite:
		return c, nil
	default:
		return "", errors.Wrapf(ErrUnknownCategory, "%q", s)
	}
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, errors.Wrapf(ErrUnknownCategory, "%q", string(c))
	}
	return string(c), nil
}

func (c *Category) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan category from %T", src)
	}

	parsed, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
