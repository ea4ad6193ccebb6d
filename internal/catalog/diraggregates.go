package catalog

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// ReplaceDirectoryAggregates rebuilds the directory_aggregates table from
// scratch inside a single transaction scope; each scan replaces the rollup
// wholesale.
func (c *Catalog) ReplaceDirectoryAggregates(aggs []types.DirectoryAggregate) error {
	return c.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM directory_aggregates`); err != nil {
			return errors.Wrap(err, "clear directory aggregates")
		}
		stmt, err := tx.Prepare(`INSERT INTO directory_aggregates (path, total_bytes, file_count) VALUES (?, ?, ?)`)
		if err != nil {
			return errors.Wrap(err, "prepare insert directory aggregates")
		}
		defer stmt.Close()

		for _, a := range aggs {
			if _, err := stmt.Exec(a.Path, a.TotalBytes, a.FileCount); err != nil {
				return errors.Wrapf(err, "insert directory aggregate %s", a.Path)
			}
		}
		return nil
	})
}

// DirectoryAggregates returns every rollup row.
func (c *Catalog) DirectoryAggregates() ([]types.DirectoryAggregate, error) {
	rows, err := c.db.Query(`SELECT path, total_bytes, file_count FROM directory_aggregates`)
	if err != nil {
		return nil, errors.Wrap(err, "query directory aggregates")
	}
	defer rows.Close()

	var out []types.DirectoryAggregate
	for rows.Next() {
		var a types.DirectoryAggregate
		if err := rows.Scan(&a.Path, &a.TotalBytes, &a.FileCount); err != nil {
			return nil, errors.Wrap(err, "scan directory aggregate")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
