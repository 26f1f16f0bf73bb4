package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/metrics"
)

// AddOutcome tells a caller whether Add wrote a row. Adding a pair that is
// already in any list is not an error: nothing is written and AlreadyPresent
// is returned.
type AddOutcome int

const (
	Added AddOutcome = iota + 1
	AlreadyPresent
)

func (o AddOutcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

type NewEntry struct {
	AccountID  uint64
	MovieID    uint64
	Title      string
	PosterPath *string
	Category   db.Category
}

// Lists keeps each (account, movie) pair in at most one category. Every
// operation is a single statement; the unique index on the pair does the rest.
type Lists struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewLists(gdb *gorm.DB, l *zap.SugaredLogger) *Lists {
	return &Lists{
		db:     gdb,
		logger: l,
	}
}

func (s *Lists) Add(ctx context.Context, e NewEntry) (AddOutcome, error) {
	if e.AccountID == 0 || e.MovieID == 0 || e.Title == "" {
		return 0, invalid("account, movie and title are required")
	}
	if !e.Category.Valid() {
		return 0, invalid("unknown list category")
	}

	model := db.ListEntry{
		AccountID:  e.AccountID,
		MovieID:    e.MovieID,
		Title:      e.Title,
		PosterPath: e.PosterPath,
		Category:   e.Category,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if res.Error != nil {
		metrics.ListOperations.WithLabelValues("add", "error").Inc()
		return 0, storeErr(res.Error, "insert list entry")
	}

	outcome := Added
	if res.RowsAffected == 0 {
		outcome = AlreadyPresent
	}
	metrics.ListOperations.WithLabelValues("add", outcome.String()).Inc()
	s.logger.Debugw("list add", "account_id", e.AccountID, "movie_id", e.MovieID, "category", e.Category, "outcome", outcome)

	return outcome, nil
}

// Move rewrites the category of an existing pair in place.
func (s *Lists) Move(ctx context.Context, accountID, movieID uint64, category db.Category) error {
	if accountID == 0 || movieID == 0 {
		return invalid("account and movie are required")
	}
	if !category.Valid() {
		return invalid("unknown list category")
	}

	res := s.db.WithContext(ctx).
		Model(&db.ListEntry{}).
		Where("account_id = ? AND movie_id = ?", accountID, movieID).
		Update("category", category)
	if res.Error != nil {
		metrics.ListOperations.WithLabelValues("move", "error").Inc()
		return storeErr(res.Error, "update list entry")
	}
	if res.RowsAffected == 0 {
		metrics.ListOperations.WithLabelValues("move", "not_found").Inc()
		return errors.Wrapf(ErrNotFound, "movie %d for account %d", movieID, accountID)
	}

	metrics.ListOperations.WithLabelValues("move", "moved").Inc()
	return nil
}

// Remove deletes the pair only if it currently sits in category.
func (s *Lists) Remove(ctx context.Context, accountID, movieID uint64, category db.Category) error {
	if accountID == 0 || movieID == 0 {
		return invalid("account and movie are required")
	}
	if !category.Valid() {
		return invalid("unknown list category")
	}

	res := s.db.WithContext(ctx).
		Where("account_id = ? AND movie_id = ? AND category = ?", accountID, movieID, category).
		Delete(&db.ListEntry{})
	if res.Error != nil {
		metrics.ListOperations.WithLabelValues("remove", "error").Inc()
		return storeErr(res.Error, "delete list entry")
	}
	if res.RowsAffected == 0 {
		metrics.ListOperations.WithLabelValues("remove", "not_found").Inc()
		return errors.Wrapf(ErrNotFound, "movie %d in %s for account %d", movieID, category, accountID)
	}

	metrics.ListOperations.WithLabelValues("remove", "removed").Inc()
	return nil
}

// List returns the account's entries ordered by insertion id. A nil category
// returns every list.
func (s *Lists) List(ctx context.Context, accountID uint64, category *db.Category) ([]db.ListEntry, error) {
	w := squirrel.Eq{
		"account_id": accountID,
	}
	if category != nil {
		if !category.Valid() {
			return nil, invalid("unknown list category")
		}
		w["category"] = *category
	}
	sql, args, err := squirrel.
		Select("id", "account_id", "movie_id", "title", "poster_path", "category").
		From("list_entries").
		Where(w).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	entries := make([]db.ListEntry, 0)
	res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&entries)
	if res.Error != nil {
		return nil, storeErr(res.Error, "scan list entries")
	}

	return entries, nil
}
