package catalog

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// UpsertClassification writes one Classification, enforced unique on
// file-ref. Used by the Orchestrator after passing an AI result through
// the Safety Engine.
func (c *Catalog) UpsertClassification(cl types.Classification) error {
	return c.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO classifications (file_id, action, confidence, reason, category,
				overridden, override_why, classified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(file_id) DO UPDATE SET
				action=excluded.action, confidence=excluded.confidence, reason=excluded.reason,
				category=excluded.category, overridden=excluded.overridden,
				override_why=excluded.override_why, classified_at=excluded.classified_at
		`, cl.FileID, string(cl.Action), cl.Confidence, cl.Reason, cl.Category,
			boolToInt(cl.Overridden), cl.OverrideWhy, cl.ClassifiedAt.Format(isoLayout))
		if err != nil {
			return errors.Wrapf(err, "upsert classification for file %d", cl.FileID)
		}
		return nil
	})
}

func (c *Catalog) ClassificationByFileID(fileID int64) (types.Classification, bool, error) {
	row := c.db.QueryRow(`
		SELECT id, file_id, action, confidence, reason, category, overridden, override_why, classified_at
		FROM classifications WHERE file_id = ?`, fileID)

	var cl types.Classification
	var action, classifiedAt string
	var overridden int
	err := row.Scan(&cl.ID, &cl.FileID, &action, &cl.Confidence, &cl.Reason, &cl.Category,
		&overridden, &cl.OverrideWhy, &classifiedAt)
	if err == sql.ErrNoRows {
		return types.Classification{}, false, nil
	}
	if err != nil {
		return types.Classification{}, false, errors.Wrap(err, "query classification")
	}
	cl.Action = types.Action(action)
	cl.Overridden = overridden != 0
	cl.ClassifiedAt = parseISO(classifiedAt)
	return cl, true, nil
}
