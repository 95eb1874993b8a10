package bootstrap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yoockh/mentorloop/config"
)

func TestClose_ReleasesOpenedStores(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	mock.ExpectClose()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	config.PostgresDB = db
	config.RedisClient = rdb
	t.Cleanup(func() {
		config.PostgresDB = nil
		config.RedisClient = nil
	})

	Close(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Nil(t, config.PostgresDB)
	assert.Nil(t, config.RedisClient)
	assert.ErrorIs(t, rdb.Ping(context.Background()).Err(), redis.ErrClosed)

	// A second call finds nothing left to close.
	Close(context.Background())
}
