package execution

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// dispatchMove implements MOVE_DATA / MOVE_APP on a file: checksum, move,
// verify, and on mismatch attempt a reverse-move counted as an error.
func (e *Engine) dispatchMove(entry types.PlanEntry, batchID string, dryRun bool) (outcome, error) {
	if !exists(entry.Path) {
		return outcomeSkipped, nil
	}
	dest := destinationFor(entry.Path, entry.Ext, e.cfg)

	if dryRun {
		return outcomeMoved, nil
	}

	if entry.IsDir {
		if err := moveFile(entry.Path, dest); err != nil {
			return outcomeSkipped, errors.Wrap(err, "move directory")
		}
		if _, err := e.catalog.AppendLogEntry(types.ActionLogEntry{
			FileID: entry.FileID, HasFileID: true, Kind: types.LogMoved,
			SourcePath: entry.Path, DestPath: dest,
			BatchID: batchID, ExecutedAt: e.now(),
		}); err != nil {
			return outcomeSkipped, errors.Wrap(err, "log moved entry")
		}
		return outcomeMoved, nil
	}

	before, err := streamChecksum(entry.Path)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "checksum before move")
	}

	if err := moveFile(entry.Path, dest); err != nil {
		return outcomeSkipped, errors.Wrap(err, "move file")
	}

	after, err := streamChecksum(dest)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "checksum after move")
	}

	if after != before {
		if revErr := moveFile(dest, entry.Path); revErr != nil {
			return outcomeSkipped, errors.Wrap(revErr, "checksum mismatch, reverse move also failed")
		}
		return outcomeSkipped, errors.New("checksum mismatch after move — reversed")
	}

	if _, err := e.catalog.AppendLogEntry(types.ActionLogEntry{
		FileID: entry.FileID, HasFileID: true, Kind: types.LogMoved,
		SourcePath: entry.Path, DestPath: dest,
		ChecksumBefore: before, ChecksumAfter: after,
		BatchID: batchID, ExecutedAt: e.now(),
	}); err != nil {
		return outcomeSkipped, errors.Wrap(err, "log moved entry")
	}

	return outcomeMoved, nil
}

// dispatchDelete implements DELETE_JUNK / DELETE_UNUSED: soft-delete to
// trash, never a permanent removal.
func (e *Engine) dispatchDelete(entry types.PlanEntry, batchID string, dryRun bool) (outcome, error) {
	if !exists(entry.Path) {
		return outcomeSkipped, nil
	}

	if dryRun {
		return outcomeDeleted, nil
	}

	before, err := streamChecksum(entry.Path)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "checksum before delete")
	}

	trashDir := filepath.Join(e.cfg.TrashRoot, batchID)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return outcomeSkipped, errors.Wrap(err, "create trash dir")
	}
	trashPath := collisionSafeName(trashDir, filepath.Base(entry.Path))

	if err := moveFile(entry.Path, trashPath); err != nil {
		return outcomeSkipped, errors.Wrap(err, "move to trash")
	}

	if _, err := e.catalog.AppendLogEntry(types.ActionLogEntry{
		FileID: entry.FileID, HasFileID: true, Kind: types.LogDeleted,
		SourcePath: entry.Path, DestPath: trashPath,
		ChecksumBefore: before,
		BatchID:        batchID, ExecutedAt: e.now(),
	}); err != nil {
		return outcomeSkipped, errors.Wrap(err, "log deleted entry")
	}

	return outcomeDeleted, nil
}

// dispatchArchive implements ARCHIVE: additive, original preserved.
func (e *Engine) dispatchArchive(entry types.PlanEntry, batchID string, dryRun bool) (outcome, error) {
	if !exists(entry.Path) {
		return outcomeSkipped, nil
	}

	if dryRun {
		return outcomeArchived, nil
	}

	before, err := streamChecksum(entry.Path)
	if err != nil && !entry.IsDir {
		return outcomeSkipped, errors.Wrap(err, "checksum before archive")
	}

	base := filepath.Base(entry.Path)
	stem := base
	if !entry.IsDir {
		stem = base[:len(base)-len(filepath.Ext(base))]
	}

	zipPath, err := archiveDestination(e.cfg.ArchiveRoot, stem, e.now())
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "allocate archive path")
	}

	if entry.IsDir {
		err = archiveDirectory(zipPath, entry.Path)
	} else {
		err = archiveFile(zipPath, entry.Path)
	}
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "write archive")
	}

	if _, err := e.catalog.AppendLogEntry(types.ActionLogEntry{
		FileID: entry.FileID, HasFileID: true, Kind: types.LogArchived,
		SourcePath: entry.Path, DestPath: zipPath,
		ChecksumBefore: before,
		BatchID:        batchID, ExecutedAt: e.now(),
	}); err != nil {
		return outcomeSkipped, errors.Wrap(err, "log archived entry")
	}

	return outcomeArchived, nil
}

// dispatchMoveAppDir implements MOVE_APP on a directory: copy tree
// under the apps root, verify by recursive file count, remove the
// original, then redirect the original path to the new location via the
// Junction Driver. Best-effort rollback if anything fails past the
// original's removal.
func (e *Engine) dispatchMoveAppDir(entry types.PlanEntry, batchID string, dryRun bool) (outcome, error) {
	if !exists(entry.Path) {
		return outcomeSkipped, nil
	}
	target := filepath.Join(e.cfg.AppsRoot, filepath.Base(entry.Path))
	if exists(target) {
		return outcomeSkipped, errors.New("move-app target already exists")
	}

	if dryRun {
		return outcomeSymlinked, nil
	}

	srcCount, err := countFiles(entry.Path)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "count source files")
	}

	if err := copyTree(entry.Path, target); err != nil {
		return outcomeSkipped, errors.Wrap(err, "copy app tree")
	}

	dstCount, err := countFiles(target)
	if err != nil {
		return outcomeSkipped, errors.Wrap(err, "count copied files")
	}
	if dstCount != srcCount {
		_ = os.RemoveAll(target)
		return outcomeSkipped, errors.New("file count mismatch after app tree copy")
	}

	if err := os.RemoveAll(entry.Path); err != nil {
		return outcomeSkipped, errors.Wrap(err, "remove original app tree")
	}

	if err := e.junction.Create(entry.Path, target); err != nil {
		// best-effort rollback: move the copy back to the original path.
		if rbErr := os.Rename(target, entry.Path); rbErr != nil {
			return outcomeSkipped, errors.Wrap(err, "create junction failed, rollback also failed")
		}
		return outcomeSkipped, errors.Wrap(err, "create junction")
	}

	if _, err := e.catalog.AppendLogEntry(types.ActionLogEntry{
		FileID: entry.FileID, HasFileID: true, Kind: types.LogSymlinked,
		SourcePath: entry.Path, DestPath: target,
		BatchID: batchID, ExecutedAt: e.now(),
	}); err != nil {
		return outcomeSkipped, errors.Wrap(err, "log symlinked entry")
	}

	return outcomeSymlinked, nil
}

func countFiles(root string) (int, error) {
	n := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	return n, err
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFileStream(path, target)
	})
}
