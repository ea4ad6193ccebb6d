package catalog

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// UpsertFiles bulk-inserts or updates File rows keyed by path, so a rescan
// refreshes metadata in place. All N records commit together or none do.
func (c *Catalog) UpsertFiles(files []types.File) error {
	return c.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO files (path, leaf, ext, size_bytes, created_at, modified_at,
				accessed_at, owner, read_only, is_dir, parent_path, scan_batch, is_redirected)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				leaf=excluded.leaf, ext=excluded.ext, size_bytes=excluded.size_bytes,
				created_at=excluded.created_at, modified_at=excluded.modified_at,
				accessed_at=excluded.accessed_at, owner=excluded.owner,
				read_only=excluded.read_only, is_dir=excluded.is_dir,
				parent_path=excluded.parent_path, scan_batch=excluded.scan_batch,
				is_redirected=excluded.is_redirected
		`)
		if err != nil {
			return errors.Wrap(err, "prepare upsert files")
		}
		defer stmt.Close()

		for _, f := range files {
			if _, err := stmt.Exec(f.Path, f.Leaf, f.Ext, f.SizeBytes,
				f.CreatedAt.Format(isoLayout), f.ModifiedAt.Format(isoLayout), f.AccessedAt.Format(isoLayout),
				f.Owner, boolToInt(f.ReadOnly), boolToInt(f.IsDir), f.ParentPath, f.ScanBatch,
				boolToInt(f.IsRedirected)); err != nil {
				return errors.Wrapf(err, "upsert file %s", f.Path)
			}
		}
		return nil
	})
}

const isoLayout = "2006-01-02T15:04:05Z07:00"

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanFile(row interface{ Scan(...any) error }) (types.File, error) {
	var f types.File
	var createdAt, modifiedAt, accessedAt string
	var readOnly, isDir, isRedirected int
	err := row.Scan(&f.ID, &f.Path, &f.Leaf, &f.Ext, &f.SizeBytes, &createdAt, &modifiedAt,
		&accessedAt, &f.Owner, &readOnly, &isDir, &f.ParentPath, &f.ScanBatch, &isRedirected)
	if err != nil {
		return types.File{}, err
	}
	f.CreatedAt = parseISO(createdAt)
	f.ModifiedAt = parseISO(modifiedAt)
	f.AccessedAt = parseISO(accessedAt)
	f.ReadOnly = readOnly != 0
	f.IsDir = isDir != 0
	f.IsRedirected = isRedirected != 0
	return f, nil
}

const fileColumns = `id, path, leaf, ext, size_bytes, created_at, modified_at, accessed_at, owner, read_only, is_dir, parent_path, scan_batch, is_redirected`

// qualifiedFileColumns prefixes every file column with alias, for queries
// that join files against tables sharing column names.
func qualifiedFileColumns(alias string) string {
	cols := strings.Split(fileColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

// FileByPath returns the File row for path, or (File{}, false, nil) if absent.
func (c *Catalog) FileByPath(path string) (types.File, bool, error) {
	row := c.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return types.File{}, false, nil
	}
	if err != nil {
		return types.File{}, false, errors.Wrap(err, "query file by path")
	}
	return f, true, nil
}

// UnclassifiedFiles returns, in stable id order, files without a
// Classification row. limit <= 0 means unlimited.
func (c *Catalog) UnclassifiedFiles(limit int) ([]types.File, error) {
	q := `SELECT ` + qualifiedFileColumns("f") + ` FROM files f
		LEFT JOIN classifications cl ON cl.file_id = f.id
		WHERE cl.id IS NULL
		ORDER BY f.id ASC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query unclassified files")
	}
	defer rows.Close()

	var out []types.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan unclassified file")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
