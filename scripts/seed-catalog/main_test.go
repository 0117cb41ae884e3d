package main

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SongDrop/gitgptapi/pkg/database"
)

func TestBuildSeed(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	users, dbs := buildSeed(3, now)

	require.Len(t, users, 2)
	require.Len(t, dbs, 3)

	assert.Equal(t, users[0].ID, dbs[0].OwnerID)
	assert.Equal(t, users[1].ID, dbs[1].OwnerID)
	assert.Empty(t, dbs[2].OwnerID, "last database should be unowned")
	assert.Equal(t, "Seeded on 2026-01-02", dbs[0].Description)
	assert.Equal(t, []string{"research", "papers"}, dbs[0].Tags)
}

func TestBuildSeed_SingleDatabaseKeepsOwner(t *testing.T) {
	users, dbs := buildSeed(1, time.Now())
	require.Len(t, dbs, 1)
	assert.Equal(t, users[0].ID, dbs[0].OwnerID)
}

func TestInsertSeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dialect, err := database.LookupDialect(database.DriverMySQL)
	require.NoError(t, err)

	users, dbs := buildSeed(1, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `databases`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO database_contributors").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO database_files").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO database_tags").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO database_tags").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, insertSeed(context.Background(), db, dialect, users, dbs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSeed_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dialect, err := database.LookupDialect(database.DriverMySQL)
	require.NoError(t, err)

	users, dbs := buildSeed(1, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = insertSeed(context.Background(), db, dialect, users, dbs)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
