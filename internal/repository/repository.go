// Package repository handles all interactions with the database.
//
// It builds the SQL statements and maps rows onto model types. Every
// method runs on a database.Session handed in by the caller; committing is
// the caller's job.
package repository
