package catalog

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// AppendLogEntry appends one ActionLogEntry to the journal. Entries are
// never deleted, only later marked undone via MarkUndone. Returns the
// assigned log id.
func (c *Catalog) AppendLogEntry(e types.ActionLogEntry) (int64, error) {
	var id int64
	err := c.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO action_log (file_id, has_file_id, kind, source_path, dest_path,
				checksum_before, checksum_after, batch_id, executed_at, undone)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		`, e.FileID, boolToInt(e.HasFileID), string(e.Kind), e.SourcePath, e.DestPath,
			e.ChecksumBefore, e.ChecksumAfter, e.BatchID, e.ExecutedAt.Format(isoLayout))
		if err != nil {
			return errors.Wrap(err, "append action log entry")
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func scanLogEntry(row interface{ Scan(...any) error }) (types.ActionLogEntry, error) {
	var e types.ActionLogEntry
	var kind, executedAt string
	var hasFileID, undone int
	err := row.Scan(&e.ID, &e.FileID, &hasFileID, &kind, &e.SourcePath, &e.DestPath,
		&e.ChecksumBefore, &e.ChecksumAfter, &e.BatchID, &executedAt, &undone)
	if err != nil {
		return types.ActionLogEntry{}, err
	}
	e.HasFileID = hasFileID != 0
	e.Kind = types.LogKind(kind)
	e.ExecutedAt = parseISO(executedAt)
	e.Undone = undone != 0
	return e, nil
}

const logColumns = `id, file_id, has_file_id, kind, source_path, dest_path, checksum_before, checksum_after, batch_id, executed_at, undone`

// PendingBatchEntries returns all not-yet-undone entries for batchID,
// ordered newest-first so the caller reverses in reverse execution order.
func (c *Catalog) PendingBatchEntries(batchID string) ([]types.ActionLogEntry, error) {
	rows, err := c.db.Query(`SELECT `+logColumns+` FROM action_log
		WHERE batch_id = ? AND undone = 0 ORDER BY id DESC`, batchID)
	if err != nil {
		return nil, errors.Wrap(err, "query pending batch entries")
	}
	defer rows.Close()

	var out []types.ActionLogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan log entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkUndone marks a single log entry undone inside its own transaction.
func (c *Catalog) MarkUndone(id int64) error {
	return c.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE action_log SET undone = 1 WHERE id = ?`, id)
		return errors.Wrapf(err, "mark log entry %d undone", id)
	})
}

// ListBatches groups the still-undoable action log by batch id, newest
// batch first, so a caller can pick which batch to reverse.
func (c *Catalog) ListBatches() ([]types.BatchSummary, error) {
	rows, err := c.db.Query(`
		SELECT batch_id, COUNT(1), MIN(executed_at), MAX(executed_at)
		FROM action_log
		WHERE undone = 0
		GROUP BY batch_id
		ORDER BY MAX(executed_at) DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list batches")
	}
	defer rows.Close()

	var out []types.BatchSummary
	for rows.Next() {
		var bs types.BatchSummary
		var earliest, latest string
		if err := rows.Scan(&bs.BatchID, &bs.EntryCount, &earliest, &latest); err != nil {
			return nil, errors.Wrap(err, "scan batch summary")
		}
		bs.EarliestAt = parseISO(earliest)
		bs.LatestAt = parseISO(latest)
		out = append(out, bs)
	}
	return out, rows.Err()
}
