package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/deppfellow/garage/internal/database"
	"github.com/deppfellow/garage/internal/model"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// RecordRepository reads and writes the records table.
type RecordRepository struct{}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{}
}

// Insert writes one record and returns the id the database assigned to it.
// record.ID is updated as well. Driver errors are returned wrapped, never
// retried.
func (r *RecordRepository) Insert(ctx context.Context, s database.Session, record *model.Record) (int64, error) {
	query, args, err := squirrel.Insert(model.RecordsTable).
		Columns("uuid", "name", "year").
		Values(record.UUID, record.Name, record.Year).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building insert query: %w", err)
	}

	var id int64
	if err := s.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting record: %w", err)
	}

	record.ID = id
	return id, nil
}

// List returns every stored record, unfiltered and in no particular order.
// The whole result set is read into memory; an empty table yields an empty
// (non-nil) slice.
func (r *RecordRepository) List(ctx context.Context, s database.Session) ([]model.Record, error) {
	query, args, err := squirrel.Select(model.RecordColumns...).
		From(model.RecordsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var records []model.Record
	if err := pgxscan.Select(ctx, s, &records, query, args...); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}

	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
