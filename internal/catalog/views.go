package catalog

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// ApprovedPlan derives the execution plan as the join of files with
// classifications with user-decisions where decision is APPROVE or CHANGE.
// A CHANGE decision substitutes the user's replacement action; PROTECT and
// REJECT decisions and files awaiting a decision are excluded. Ordered
// delete-actions-first so destructive work surfaces early in any dry-run
// preview.
func (c *Catalog) ApprovedPlan() ([]types.PlanEntry, error) {
	rows, err := c.db.Query(`
		SELECT f.id, f.path, f.is_dir, f.ext, f.size_bytes, cl.action, ud.decision, ud.replacement
		FROM files f
		JOIN classifications cl ON cl.file_id = f.id
		JOIN user_decisions ud ON ud.file_id = f.id
		WHERE ud.decision IN ('APPROVE', 'CHANGE') AND ud.executed = 0
		ORDER BY
			CASE WHEN (CASE WHEN ud.decision = 'CHANGE' AND ud.replacement != '' THEN ud.replacement ELSE cl.action END)
				IN ('DELETE_JUNK', 'DELETE_UNUSED') THEN 0 ELSE 1 END,
			f.id ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query approved plan")
	}
	defer rows.Close()

	var out []types.PlanEntry
	for rows.Next() {
		var pe types.PlanEntry
		var isDir int
		var clAction, decision, replacement string
		if err := rows.Scan(&pe.FileID, &pe.Path, &isDir, &pe.Ext, &pe.SizeBytes,
			&clAction, &decision, &replacement); err != nil {
			return nil, errors.Wrap(err, "scan approved plan row")
		}
		pe.IsDir = isDir != 0
		if types.Decision(decision) == types.DecisionChange && replacement != "" {
			pe.Action = types.Action(replacement)
		} else {
			pe.Action = types.Action(clAction)
		}
		out = append(out, pe)
	}
	return out, rows.Err()
}

// SummaryByAction returns counts of classified files grouped by final action.
func (c *Catalog) SummaryByAction() (map[types.Action]int, error) {
	rows, err := c.db.Query(`SELECT action, COUNT(1) FROM classifications GROUP BY action`)
	if err != nil {
		return nil, errors.Wrap(err, "query summary by action")
	}
	defer rows.Close()

	out := map[types.Action]int{}
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, errors.Wrap(err, "scan summary by action")
		}
		out[types.Action(action)] = n
	}
	return out, rows.Err()
}

// TopLargest returns the n largest files by size.
func (c *Catalog) TopLargest(n int) ([]types.File, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := c.db.Query(`SELECT `+fileColumns+` FROM files WHERE is_dir = 0 ORDER BY size_bytes DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "query top largest")
	}
	defer rows.Close()

	var out []types.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan top largest file")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ByExtensionBytes returns total bytes per extension.
func (c *Catalog) ByExtensionBytes() (map[string]int64, error) {
	rows, err := c.db.Query(`SELECT ext, SUM(size_bytes) FROM files WHERE is_dir = 0 GROUP BY ext`)
	if err != nil {
		return nil, errors.Wrap(err, "query bytes by extension")
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var ext string
		var total int64
		if err := rows.Scan(&ext, &total); err != nil {
			return nil, errors.Wrap(err, "scan bytes by extension")
		}
		out[ext] = total
	}
	return out, rows.Err()
}

// ReviewProgress returns (reviewed, pending) counts: reviewed files have a
// UserDecision, pending ones have a Classification but no decision yet.
func (c *Catalog) ReviewProgress() (reviewed, pending int, err error) {
	if err = c.db.QueryRow(`SELECT COUNT(1) FROM user_decisions`).Scan(&reviewed); err != nil {
		return 0, 0, errors.Wrap(err, "count reviewed")
	}
	if err = c.db.QueryRow(`
		SELECT COUNT(1) FROM classifications cl
		LEFT JOIN user_decisions ud ON ud.file_id = cl.file_id
		WHERE ud.id IS NULL
	`).Scan(&pending); err != nil {
		return 0, 0, errors.Wrap(err, "count pending")
	}
	return reviewed, pending, nil
}

// Stats bundles every review-UI aggregate view into one CatalogStats,
// including the pending-review and reclaimable-bytes dashboard counters.
func (c *Catalog) Stats() (types.CatalogStats, error) {
	var stats types.CatalogStats
	var err error

	if stats.ByAction, err = c.SummaryByAction(); err != nil {
		return stats, err
	}
	if stats.TopLargest, err = c.TopLargest(10); err != nil {
		return stats, err
	}
	if stats.ByExtensionBytes, err = c.ByExtensionBytes(); err != nil {
		return stats, err
	}
	if stats.ReviewedCount, stats.PendingCount, err = c.ReviewProgress(); err != nil {
		return stats, err
	}

	if err := c.db.QueryRow(`
		SELECT COUNT(1) FROM classifications cl
		LEFT JOIN user_decisions ud ON ud.file_id = cl.file_id
		WHERE ud.id IS NULL
	`).Scan(&stats.PendingReviewCount); err != nil {
		return stats, errors.Wrap(err, "count pending review")
	}

	if err := c.db.QueryRow(`
		SELECT COALESCE(SUM(f.size_bytes), 0)
		FROM files f
		JOIN classifications cl ON cl.file_id = f.id
		LEFT JOIN user_decisions ud ON ud.file_id = f.id
		WHERE ud.id IS NULL AND cl.action IN ('DELETE_JUNK', 'DELETE_UNUSED')
	`).Scan(&stats.ReclaimableBytes); err != nil {
		return stats, errors.Wrap(err, "sum reclaimable bytes")
	}

	return stats, nil
}

// HumanizeBytes formats n using go-humanize, for CLI/report display.
func HumanizeBytes(n int64) string { return humanize.Bytes(uint64(n)) }
