// Package undo reverses executed batches: given a batch identifier, it
// reverses every not-yet-undone action-log entry in that batch,
// newest-first, restoring the prior filesystem state wherever the action
// permits it. Only an ARCHIVED-undo discards anything, and what it
// discards is a redundant copy — the original was never removed by ARCHIVE
// in the first place.
package undo

import (
	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/types"
)

// Catalog is the subset of *catalog.Catalog the Undo Manager depends on.
type Catalog interface {
	PendingBatchEntries(batchID string) ([]types.ActionLogEntry, error)
	MarkUndone(id int64) error
	ListBatches() ([]types.BatchSummary, error)
}

// Junction is the subset of *junction.Driver the Undo Manager depends on
// for reversing a SYMLINKED (MOVE_APP-on-directory) entry.
type Junction interface {
	Remove(link string) error
}

// Manager reverses one batch at a time, one entry at a time; ordering of
// reversal is the priority, not throughput.
type Manager struct {
	catalog     Catalog
	junction    Junction
	summaryRoot string
	log         *logging.Logger
}

func New(catalog Catalog, junctionDriver Junction, log *logging.Logger) *Manager {
	return &Manager{catalog: catalog, junction: junctionDriver, log: log}
}

// WithSummaryRoot enables an atomically-written JSON run-summary sidecar
// per undone batch under root. A zero-value Manager writes no sidecar.
func (m *Manager) WithSummaryRoot(root string) *Manager {
	m.summaryRoot = root
	return m
}

// ListBatches surfaces every still-undoable batch, letting a caller pick
// a batch id without already knowing it.
func (m *Manager) ListBatches() ([]types.BatchSummary, error) {
	return m.catalog.ListBatches()
}

// UndoBatch selects every not-yet-undone entry for batchID, newest-first,
// and reverses each in turn. A single reversal failure marks that entry
// failed and the loop continues; it never aborts the whole batch.
func (m *Manager) UndoBatch(batchID string, dryRun bool) (types.UndoSummary, error) {
	entries, err := m.catalog.PendingBatchEntries(batchID)
	if err != nil {
		return types.UndoSummary{}, errors.Wrap(err, "load pending batch entries")
	}

	var summary types.UndoSummary
	for _, e := range entries {
		outcome, err := m.reverse(e, dryRun)
		switch outcome {
		case outcomeUndone:
			summary.Undone++
			if !dryRun {
				if err := m.catalog.MarkUndone(e.ID); err != nil {
					m.log.Errorf("mark log entry %d undone: %v", e.ID, err)
					summary.Undone--
					summary.Failed++
				}
			}
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Failed++
			m.log.Errorf("undo entry %d (%s %s): %v", e.ID, e.Kind, e.SourcePath, err)
		}
	}

	m.log.Successf("undo batch %s complete: undone=%d skipped=%d failed=%d",
		batchID, summary.Undone, summary.Skipped, summary.Failed)

	if !dryRun {
		if err := writeSummarySidecar(m.summaryRoot, "undo_"+batchID, summary); err != nil {
			m.log.Warnf("write undo-summary sidecar for batch %s: %v", batchID, err)
		}
	}

	return summary, nil
}

type outcome int

const (
	outcomeUndone outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (m *Manager) reverse(e types.ActionLogEntry, dryRun bool) (outcome, error) {
	switch e.Kind {
	case types.LogMoved:
		return m.reverseMoved(e, dryRun)
	case types.LogDeleted:
		return m.reverseDeleted(e, dryRun)
	case types.LogArchived:
		return m.reverseArchived(e, dryRun)
	case types.LogSymlinked:
		return m.reverseSymlinked(e, dryRun)
	default:
		m.log.Warnf("unknown action-log kind %q on entry %d — skipping", e.Kind, e.ID)
		return outcomeSkipped, nil
	}
}

// reverseMoved: if the destination still exists, move it back to source.
func (m *Manager) reverseMoved(e types.ActionLogEntry, dryRun bool) (outcome, error) {
	if !exists(e.DestPath) {
		return outcomeSkipped, nil
	}
	if dryRun {
		return outcomeUndone, nil
	}
	if err := moveBack(e.DestPath, e.SourcePath); err != nil {
		return outcomeFailed, errors.Wrap(err, "move destination back to source")
	}
	return outcomeUndone, nil
}

// reverseDeleted: move the trash copy back to source.
func (m *Manager) reverseDeleted(e types.ActionLogEntry, dryRun bool) (outcome, error) {
	if !exists(e.DestPath) {
		return outcomeSkipped, nil
	}
	if dryRun {
		return outcomeUndone, nil
	}
	if err := moveBack(e.DestPath, e.SourcePath); err != nil {
		return outcomeFailed, errors.Wrap(err, "move trash copy back to source")
	}
	return outcomeUndone, nil
}

// reverseArchived: delete the archive file. Originals were never removed
// by ARCHIVE, so nothing needs restoring — this is the one reversal that
// discards bytes, and what it discards is a redundant copy.
func (m *Manager) reverseArchived(e types.ActionLogEntry, dryRun bool) (outcome, error) {
	if !exists(e.DestPath) {
		return outcomeSkipped, nil
	}
	if dryRun {
		return outcomeUndone, nil
	}
	if err := removeFile(e.DestPath); err != nil {
		return outcomeFailed, errors.Wrap(err, "delete archive file")
	}
	return outcomeUndone, nil
}

// reverseSymlinked: remove the junction at source without following it
// (the target tree must survive the removal), then move the target tree
// back to source.
func (m *Manager) reverseSymlinked(e types.ActionLogEntry, dryRun bool) (outcome, error) {
	sourceIsLink := exists(e.SourcePath)
	targetExists := exists(e.DestPath)
	if !sourceIsLink || !targetExists {
		return outcomeSkipped, nil
	}
	if dryRun {
		return outcomeUndone, nil
	}
	if err := m.junction.Remove(e.SourcePath); err != nil {
		return outcomeFailed, errors.Wrap(err, "remove junction at source")
	}
	if err := moveBack(e.DestPath, e.SourcePath); err != nil {
		return outcomeFailed, errors.Wrap(err, "move target tree back to source")
	}
	return outcomeUndone, nil
}
