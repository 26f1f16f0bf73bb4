package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db/dbtest"
)

func TestParseCategory(t *testing.T) {
	for _, c := range db.Categories {
		got, err := db.ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := db.ParseCategory("assistir")
	assert.ErrorIs(t, err, db.ErrUnknownCategory)
	_, err = db.ParseCategory("")
	assert.ErrorIs(t, err, db.ErrUnknownCategory)
}

func TestCategoryStoreBoundary(t *testing.T) {
	_, err := db.Category("later").Value()
	assert.ErrorIs(t, err, db.ErrUnknownCategory)

	v, err := db.CategoryWatched.Value()
	require.NoError(t, err)
	assert.Equal(t, "watched", v)

	var c db.Category
	require.NoError(t, c.Scan([]byte("favorite")))
	assert.Equal(t, db.CategoryFavorite, c)
	assert.Error(t, c.Scan("later"))
	assert.Error(t, c.Scan(42))
}

func TestMigrateAndPing(t *testing.T) {
	gdb := dbtest.New(t)

	require.NoError(t, db.Ping(context.Background(), gdb))
	assert.True(t, gdb.Migrator().HasTable(&db.Account{}))
	assert.True(t, gdb.Migrator().HasTable(&db.ListEntry{}))
	assert.True(t, gdb.Migrator().HasIndex(&db.ListEntry{}, "uidx_account_movie"))
}

func TestUniqueConstraints(t *testing.T) {
	gdb := dbtest.New(t)

	require.NoError(t, gdb.Create(&db.Account{Name: "Ana", Email: "ana@gmail.com", Password: "secret1"}).Error)
	err := gdb.Create(&db.Account{Name: "Other", Email: "ana@gmail.com", Password: "secret2"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	entry := db.ListEntry{AccountID: 1, MovieID: 42, Title: "Alien", Category: db.CategoryToWatch}
	require.NoError(t, gdb.Create(&entry).Error)
	err = gdb.Create(&db.ListEntry{AccountID: 1, MovieID: 42, Title: "Alien", Category: db.CategoryWatched}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := db.Open("oracle", "", nil)
	assert.Error(t, err)
}
