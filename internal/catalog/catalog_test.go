package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localdrive/triage/internal/types"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func mustUpsertFile(t *testing.T, c *Catalog, path string) types.File {
	t.Helper()
	now := time.Now()
	f := types.File{
		Path: path, Leaf: filepath.Base(path), Ext: filepath.Ext(path),
		SizeBytes: 100, CreatedAt: now, ModifiedAt: now, AccessedAt: now,
		ParentPath: filepath.Dir(path), ScanBatch: "scan-1",
	}
	if err := c.UpsertFiles([]types.File{f}); err != nil {
		t.Fatalf("upsert file: %v", err)
	}
	got, ok, err := c.FileByPath(path)
	if err != nil || !ok {
		t.Fatalf("file by path: ok=%v err=%v", ok, err)
	}
	return got
}

func TestUpsertFiles_RescanUpdatesInPlace(t *testing.T) {
	c := newTestCatalog(t)
	f := mustUpsertFile(t, c, `C:\Data\a.txt`)

	f2 := f
	f2.SizeBytes = 999
	if err := c.UpsertFiles([]types.File{f2}); err != nil {
		t.Fatalf("rescan upsert: %v", err)
	}

	got, ok, err := c.FileByPath(`C:\Data\a.txt`)
	if err != nil || !ok {
		t.Fatalf("file by path after rescan: ok=%v err=%v", ok, err)
	}
	if got.SizeBytes != 999 {
		t.Fatalf("size not updated: got %d", got.SizeBytes)
	}
	if got.ID != f.ID {
		t.Fatalf("upsert on rescan must not change id: got %d want %d", got.ID, f.ID)
	}
}

func TestUnclassifiedFiles_StableOrder(t *testing.T) {
	c := newTestCatalog(t)
	mustUpsertFile(t, c, `C:\Data\a.txt`)
	mustUpsertFile(t, c, `C:\Data\b.txt`)
	mustUpsertFile(t, c, `C:\Data\c.txt`)

	files, err := c.UnclassifiedFiles(0)
	if err != nil {
		t.Fatalf("unclassified files: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 unclassified files, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i].ID <= files[i-1].ID {
			t.Fatalf("expected stable ascending id order, got %v", files)
		}
	}
}

func TestDecision_RequiresPriorClassification(t *testing.T) {
	c := newTestCatalog(t)
	f := mustUpsertFile(t, c, `C:\Data\a.txt`)

	err := c.UpsertDecision(types.UserDecision{FileID: f.ID, Decision: types.DecisionApprove, DecidedAt: time.Now()})
	if err != ErrNoClassification {
		t.Fatalf("expected ErrNoClassification, got %v", err)
	}
}

func TestApprovedPlan_ChangeUsesReplacement(t *testing.T) {
	c := newTestCatalog(t)
	f := mustUpsertFile(t, c, `C:\Data\a.txt`)

	if err := c.UpsertClassification(types.Classification{
		FileID: f.ID, Action: types.ActionDeleteJunk, Confidence: 0.9, ClassifiedAt: time.Now(),
	}); err != nil {
		t.Fatalf("upsert classification: %v", err)
	}
	if err := c.UpsertDecision(types.UserDecision{
		FileID: f.ID, Decision: types.DecisionChange, Replacement: types.ActionArchive,
		HasReplace: true, DecidedAt: time.Now(),
	}); err != nil {
		t.Fatalf("upsert decision: %v", err)
	}

	plan, err := c.ApprovedPlan()
	if err != nil {
		t.Fatalf("approved plan: %v", err)
	}
	if len(plan) != 1 || plan[0].Action != types.ActionArchive {
		t.Fatalf("expected replacement action ARCHIVE, got %+v", plan)
	}
}

func TestApprovedPlan_ProtectExcluded(t *testing.T) {
	c := newTestCatalog(t)
	f := mustUpsertFile(t, c, `C:\Data\a.txt`)

	if err := c.UpsertClassification(types.Classification{
		FileID: f.ID, Action: types.ActionDeleteJunk, Confidence: 0.9, ClassifiedAt: time.Now(),
	}); err != nil {
		t.Fatalf("upsert classification: %v", err)
	}
	if err := c.UpsertDecision(types.UserDecision{
		FileID: f.ID, Decision: types.DecisionProtect, Replacement: types.ActionKeep,
		HasReplace: true, DecidedAt: time.Now(),
	}); err != nil {
		t.Fatalf("upsert decision: %v", err)
	}

	plan, err := c.ApprovedPlan()
	if err != nil {
		t.Fatalf("approved plan: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("PROTECT decisions must be excluded from the plan, got %+v", plan)
	}
}

func TestApprovedPlan_DeletesOrderedFirst(t *testing.T) {
	c := newTestCatalog(t)
	keep := mustUpsertFile(t, c, `C:\Data\keep.txt`)
	del := mustUpsertFile(t, c, `C:\Data\del.txt`)

	for _, tc := range []struct {
		f      types.File
		action types.Action
	}{
		{keep, types.ActionMoveData},
		{del, types.ActionDeleteJunk},
	} {
		if err := c.UpsertClassification(types.Classification{FileID: tc.f.ID, Action: tc.action, Confidence: 0.9, ClassifiedAt: time.Now()}); err != nil {
			t.Fatalf("upsert classification: %v", err)
		}
		if err := c.UpsertDecision(types.UserDecision{FileID: tc.f.ID, Decision: types.DecisionApprove, DecidedAt: time.Now()}); err != nil {
			t.Fatalf("upsert decision: %v", err)
		}
	}

	plan, err := c.ApprovedPlan()
	if err != nil {
		t.Fatalf("approved plan: %v", err)
	}
	if len(plan) != 2 || !plan[0].Action.IsDelete() {
		t.Fatalf("expected delete action first, got %+v", plan)
	}
}

func TestActionLog_AppendAndMarkUndone(t *testing.T) {
	c := newTestCatalog(t)
	id, err := c.AppendLogEntry(types.ActionLogEntry{
		Kind: types.LogMoved, SourcePath: `C:\a`, DestPath: `C:\b`,
		BatchID: "batch_1", ExecutedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("append log entry: %v", err)
	}

	entries, err := c.PendingBatchEntries("batch_1")
	if err != nil {
		t.Fatalf("pending batch entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Undone {
		t.Fatalf("expected one pending entry, got %+v", entries)
	}

	if err := c.MarkUndone(id); err != nil {
		t.Fatalf("mark undone: %v", err)
	}
	entries, err = c.PendingBatchEntries("batch_1")
	if err != nil {
		t.Fatalf("pending batch entries after undo: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no pending entries after undo, got %+v", entries)
	}
}

func TestPendingBatchEntries_NewestFirst(t *testing.T) {
	c := newTestCatalog(t)
	base := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.AppendLogEntry(types.ActionLogEntry{
			Kind: types.LogDeleted, SourcePath: filepath.Join(`C:\a`, string(rune('a'+i))),
			BatchID: "batch_x", ExecutedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("append entry %d: %v", i, err)
		}
	}

	entries, err := c.PendingBatchEntries("batch_x")
	if err != nil {
		t.Fatalf("pending batch entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID >= entries[i-1].ID {
			t.Fatalf("expected descending id (newest-first) order, got %+v", entries)
		}
	}
}
