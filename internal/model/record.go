// Package model declares the entities persisted by the service.
package model

// RecordsTable is the table Record rows live in.
const RecordsTable = "records"

// Record is the single persisted entity.
//
// ID is assigned by the database on insert and never changes. UUID is
// generated by the service on insert; rows written out-of-band may carry
// NULL, hence the pointer.
type Record struct {
	ID   int64   `json:"id" db:"id"`
	UUID *string `json:"uuid" db:"uuid"`
	Name string  `json:"name" db:"name"`
	Year int32   `json:"year" db:"year"`
}

// RecordColumns lists the columns of RecordsTable in declaration order.
var RecordColumns = []string{"id", "uuid", "name", "year"}
