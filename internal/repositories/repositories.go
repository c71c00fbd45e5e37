// package repositories provides the SQLite catalog cache.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence increments and returns the next sequence number for the given table.
//
// Sequence numbers order cached playlists by first fetch. Pass the enclosing transaction so the
// increment commits or rolls back with the insert it numbers.
func NextSequence(q querier, table string) (int, error) {
	sequenceTable := table + "_sequence"

	if _, err := q.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err := q.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}

// ErrNotCached is returned when a playlist has not been saved to the cache.
var ErrNotCached = errors.New("playlist not cached")
