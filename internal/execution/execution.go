// Package execution turns the Catalog's approved-action plan into
// checksummed, logged filesystem mutations: moves, soft-deletes to trash,
// archives, and (via the Junction Driver) app-directory redirects.
package execution

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/types"
)

// Roots bundles the filesystem roots the Execution Engine writes under.
type Roots struct {
	TrashRoot       string
	ArchiveRoot     string
	AppsRoot        string
	DocumentsRoot   string
	MediaPhotosRoot string
	MediaVideosRoot string
	MediaMusicRoot  string
	ProjectsRoot    string

	// SummaryRoot holds the atomically-written JSON run-summary sidecar
	// that ExecutePlan writes once per non-dry-run batch, after dispatching
	// every entry. Empty disables the sidecar.
	SummaryRoot string
}

// Catalog is the subset of *catalog.Catalog the Execution Engine depends on.
type Catalog interface {
	ApprovedPlan() ([]types.PlanEntry, error)
	AppendLogEntry(types.ActionLogEntry) (int64, error)
	MarkDecisionsExecuted([]int64) error
}

// Junction is the subset of *junction.Driver the Execution Engine depends
// on for MOVE_APP-on-directory dispatch.
type Junction interface {
	Create(link, target string) error
	Remove(link string) error
}

// Engine dispatches one approved plan at a time, strictly serialized.
type Engine struct {
	catalog  Catalog
	junction Junction
	cfg      Roots
	log      *logging.Logger
	now      func() time.Time
}

func New(catalog Catalog, junctionDriver Junction, cfg Roots, log *logging.Logger) *Engine {
	return &Engine{catalog: catalog, junction: junctionDriver, cfg: cfg, log: log, now: time.Now}
}

// newBatchID allocates "batch_YYYYMMDD_HHMMSS_<8-hex-random>".
func newBatchID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return "batch_" + now.Format("20060102_150405") + "_" + suffix
}

// ExecutePlan reads the approved-action view and dispatches each entry in
// order. If the plan is empty, returns a summary with no batch id and
// all-zero counts; a second call after a successful run sees an empty plan
// because entries are marked executed below.
func (e *Engine) ExecutePlan(dryRun bool) (types.ExecuteSummary, error) {
	plan, err := e.catalog.ApprovedPlan()
	if err != nil {
		return types.ExecuteSummary{}, errors.Wrap(err, "load approved plan")
	}
	if len(plan) == 0 {
		return types.ExecuteSummary{}, nil
	}

	batchID := newBatchID(e.now())
	summary := types.ExecuteSummary{BatchID: batchID}

	var executedFileIDs []int64
	for _, entry := range plan {
		dispatched, err := e.dispatch(entry, batchID, dryRun)
		switch {
		case err != nil:
			e.log.Errorf("execute %s on %s: %v", entry.Action, entry.Path, err)
			summary.Errors++
		case dispatched == outcomeSkipped:
			summary.Skipped++
		default:
			switch dispatched {
			case outcomeMoved:
				summary.Moved++
			case outcomeDeleted:
				summary.Deleted++
			case outcomeArchived:
				summary.Archived++
			case outcomeSymlinked:
				summary.Symlinked++
			}
			if !dryRun {
				executedFileIDs = append(executedFileIDs, entry.FileID)
			}
		}
	}

	if !dryRun && len(executedFileIDs) > 0 {
		if err := e.catalog.MarkDecisionsExecuted(executedFileIDs); err != nil {
			return summary, errors.Wrap(err, "mark decisions executed")
		}
	}

	if !dryRun {
		if err := writeSummarySidecar(e.cfg.SummaryRoot, summary.BatchID, summary); err != nil {
			e.log.Warnf("write run-summary sidecar for batch %s: %v", summary.BatchID, err)
		}
	}

	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeMoved
	outcomeDeleted
	outcomeArchived
	outcomeSymlinked
)

func (e *Engine) dispatch(entry types.PlanEntry, batchID string, dryRun bool) (outcome, error) {
	switch entry.Action {
	case types.ActionMoveApp:
		if entry.IsDir {
			return e.dispatchMoveAppDir(entry, batchID, dryRun)
		}
		return e.dispatchMove(entry, batchID, dryRun)
	case types.ActionMoveData:
		return e.dispatchMove(entry, batchID, dryRun)
	case types.ActionDeleteJunk, types.ActionDeleteUnused:
		return e.dispatchDelete(entry, batchID, dryRun)
	case types.ActionArchive:
		return e.dispatchArchive(entry, batchID, dryRun)
	case types.ActionKeep:
		return outcomeSkipped, nil
	default:
		return outcomeSkipped, errors.Errorf("unknown action %q", entry.Action)
	}
}

