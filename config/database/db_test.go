package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRunsSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(schema).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateReturnsError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(schema).WillReturnError(errors.New("permission denied"))

	assert.Error(t, Migrate(context.Background(), db))
}

func TestSchemaInstallsNotifyTrigger(t *testing.T) {
	assert.Contains(t, schema, "pg_notify('document_updates', NEW.id::text)")
	assert.Contains(t, schema, "AFTER UPDATE ON documents")
}

func TestConnectRedisDisabledWithoutURI(t *testing.T) {
	client, err := ConnectRedis("")
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnectRedisRejectsBadURI(t *testing.T) {
	client, err := ConnectRedis("not-a-redis-uri")
	assert.Error(t, err)
	assert.Nil(t, client)
}
