package catalog

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// ErrNoClassification is returned by UpsertDecision when the referenced
// file has no prior Classification; a decision without one is ill-formed.
var ErrNoClassification = errors.New("user decision references a file with no classification")

// UpsertDecision writes one UserDecision, enforced unique on file-ref.
func (c *Catalog) UpsertDecision(d types.UserDecision) error {
	return c.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM classifications WHERE file_id = ?`, d.FileID).Scan(&exists); err != nil {
			return errors.Wrap(err, "check classification exists")
		}
		if exists == 0 {
			return ErrNoClassification
		}

		_, err := tx.Exec(`
			INSERT INTO user_decisions (file_id, decision, replacement, has_replace, decided_at, executed)
			VALUES (?, ?, ?, ?, ?, 0)
			ON CONFLICT(file_id) DO UPDATE SET
				decision=excluded.decision, replacement=excluded.replacement,
				has_replace=excluded.has_replace, decided_at=excluded.decided_at,
				executed=0
		`, d.FileID, string(d.Decision), string(d.Replacement), boolToInt(d.HasReplace), d.DecidedAt.Format(isoLayout))
		if err != nil {
			return errors.Wrapf(err, "upsert decision for file %d", d.FileID)
		}
		return nil
	})
}

func (c *Catalog) DecisionByFileID(fileID int64) (types.UserDecision, bool, error) {
	row := c.db.QueryRow(`
		SELECT id, file_id, decision, replacement, has_replace, decided_at, executed
		FROM user_decisions WHERE file_id = ?`, fileID)

	var d types.UserDecision
	var decision, replacement, decidedAt string
	var hasReplace, executed int
	err := row.Scan(&d.ID, &d.FileID, &decision, &replacement, &hasReplace, &decidedAt, &executed)
	if err == sql.ErrNoRows {
		return types.UserDecision{}, false, nil
	}
	if err != nil {
		return types.UserDecision{}, false, errors.Wrap(err, "query decision")
	}
	d.Decision = types.Decision(decision)
	d.Replacement = types.Action(replacement)
	d.HasReplace = hasReplace != 0
	d.DecidedAt = parseISO(decidedAt)
	d.Executed = executed != 0
	return d, true, nil
}

// MarkDecisionsExecuted flags fileIDs' decisions executed so the approved
// plan shrinks after a run and a second ExecutePlan is a no-op.
func (c *Catalog) MarkDecisionsExecuted(fileIDs []int64) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return c.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE user_decisions SET executed = 1 WHERE file_id = ?`)
		if err != nil {
			return errors.Wrap(err, "prepare mark decisions executed")
		}
		defer stmt.Close()
		for _, id := range fileIDs {
			if _, err := stmt.Exec(id); err != nil {
				return errors.Wrapf(err, "mark decision executed for file %d", id)
			}
		}
		return nil
	})
}
