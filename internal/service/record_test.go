package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/deppfellow/garage/internal/config"
	"github.com/deppfellow/garage/internal/database"
	"github.com/deppfellow/garage/internal/repository"
	"github.com/deppfellow/garage/internal/server"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*RecordService, pgxmock.PgxPoolIface) {
	t.Helper()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	log := zerolog.Nop()
	srv := server.NewWithDatabase(config.Default(), &log, nil, database.NewWithPool(mockPool, &log))
	return NewServices(srv, repository.NewRepositories()).Record, mockPool
}

func TestRecordService_CreateRecord(t *testing.T) {
	insertSQL := regexp.QuoteMeta("INSERT INTO records (uuid,name,year) VALUES ($1,$2,$3) RETURNING id")

	t.Run("Should generate a uuid and return the stored record", func(t *testing.T) {
		svc, mockPool := newTestService(t)
		svc.newUUID = func() string { return "fixed-uuid" }

		token := "fixed-uuid"
		mockPool.ExpectBegin()
		mockPool.ExpectQuery(insertSQL).
			WithArgs(&token, "Corolla", int32(2004)).
			WillReturnRows(mockPool.NewRows([]string{"id"}).AddRow(int64(3)))
		mockPool.ExpectCommit()

		record, err := svc.CreateRecord(context.Background(), "Corolla", 2004)

		require.NoError(t, err)
		assert.Equal(t, int64(3), record.ID)
		assert.Equal(t, "fixed-uuid", *record.UUID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should use a random uuid by default", func(t *testing.T) {
		svc, mockPool := newTestService(t)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(insertSQL).
			WithArgs(pgxmock.AnyArg(), "Civic", int32(1998)).
			WillReturnRows(mockPool.NewRows([]string{"id"}).AddRow(int64(1)))
		mockPool.ExpectCommit()

		record, err := svc.CreateRecord(context.Background(), "Civic", 1998)

		require.NoError(t, err)
		_, err = uuid.Parse(*record.UUID)
		assert.NoError(t, err)
	})

	t.Run("Should roll back when the insert fails", func(t *testing.T) {
		svc, mockPool := newTestService(t)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(insertSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()

		record, err := svc.CreateRecord(context.Background(), "Civic", 1998)

		assert.Nil(t, record)
		assert.ErrorContains(t, err, "create record")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRecordService_ListRecords(t *testing.T) {
	t.Run("Should read every record in one session", func(t *testing.T) {
		svc, mockPool := newTestService(t)

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT id, uuid, name, year FROM records")).
			WillReturnRows(mockPool.NewRows([]string{"id", "uuid", "name", "year"}).
				AddRow(int64(1), (*string)(nil), "Mini", int32(1959)))
		mockPool.ExpectCommit()

		records, err := svc.ListRecords(context.Background())

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Mini", records[0].Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
