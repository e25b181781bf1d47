package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/garage/internal/database"
	"github.com/deppfellow/garage/internal/model"
	"github.com/deppfellow/garage/internal/repository"
	"github.com/deppfellow/garage/internal/server"
	"github.com/google/uuid"
)

type RecordService struct {
	server *server.Server
	repo   *repository.RecordRepository

	// newUUID is swapped in tests.
	newUUID func() string
}

func NewRecordService(s *server.Server, repo *repository.RecordRepository) *RecordService {
	return &RecordService{
		server:  s,
		repo:    repo,
		newUUID: func() string { return uuid.New().String() },
	}
}

// CreateRecord stores a new record in its own session and returns it with
// the generated id and uuid filled in. Nothing is written if the insert or
// the commit fails.
func (rs *RecordService) CreateRecord(ctx context.Context, name string, year int32) (*model.Record, error) {
	token := rs.newUUID()
	record := &model.Record{
		UUID: &token,
		Name: name,
		Year: year,
	}

	err := rs.server.DB.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		_, err := rs.repo.Insert(ctx, s, record)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return record, nil
}

// ListRecords returns every stored record.
func (rs *RecordService) ListRecords(ctx context.Context) ([]model.Record, error) {
	var records []model.Record

	err := rs.server.DB.WithSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		records, err = rs.repo.List(ctx, s)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return records, nil
}
