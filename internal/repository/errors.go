package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSchemaMissing marks a table that does not exist yet. Callers degrade to
	// "no data" instead of failing.
	ErrSchemaMissing = errors.New("schema missing")
)

// wrap annotates a driver error with op and tags missing-table errors with
// ErrSchemaMissing.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isMissingTable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrSchemaMissing, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isMissingTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P01"
	}
	return strings.Contains(err.Error(), "no such table")
}

// IsTransient reports errors worth one retry: a schema cache that is out of date
// or a store that is briefly locked.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrSchema:
			return true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "57P03":
			return true
		case "0A000":
			return strings.Contains(pqErr.Message, "cached plan")
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "schema cache")
}
