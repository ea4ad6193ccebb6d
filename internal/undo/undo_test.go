package undo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/types"
)

type fakeCatalog struct {
	entries []types.ActionLogEntry
	undone  map[int64]bool
}

func newFakeCatalog(entries []types.ActionLogEntry) *fakeCatalog {
	return &fakeCatalog{entries: entries, undone: map[int64]bool{}}
}

func (f *fakeCatalog) PendingBatchEntries(batchID string) ([]types.ActionLogEntry, error) {
	var out []types.ActionLogEntry
	for _, e := range f.entries {
		if e.BatchID == batchID && !f.undone[e.ID] {
			out = append(out, e)
		}
	}
	// newest-first, mirroring catalog.PendingBatchEntries' ORDER BY id DESC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeCatalog) MarkUndone(id int64) error {
	f.undone[id] = true
	return nil
}

func (f *fakeCatalog) ListBatches() ([]types.BatchSummary, error) { return nil, nil }

type fakeJunction struct {
	removed []string
}

func (f *fakeJunction) Remove(link string) error {
	f.removed = append(f.removed, link)
	return os.RemoveAll(link)
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.LogSettings{NoLogs: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func TestUndoBatch_MovedRoundTrip(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "Work", "r.csv")
	dst := filepath.Join(base, "documents", "Work", "r.csv")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("a,b,c\n1,2,3"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogMoved, SourcePath: src, DestPath: dst, BatchID: "b1", ExecutedAt: time.Now()},
	})
	mgr := New(cat, &fakeJunction{}, testLogger(t))

	summary, err := mgr.UndoBatch("b1", false)
	if err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if summary.Undone != 1 {
		t.Fatalf("expected 1 undone, got %+v", summary)
	}
	if !exists(src) {
		t.Fatalf("expected source restored")
	}
	if exists(dst) {
		t.Fatalf("expected destination cleared")
	}
	if !cat.undone[1] {
		t.Fatalf("expected log entry marked undone")
	}
}

func TestUndoBatch_DeletedRoundTrip(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "X", "junk.tmp")
	trash := filepath.Join(base, "trash", "batch_1", "junk.tmp")
	if err := os.MkdirAll(filepath.Dir(trash), 0o755); err != nil {
		t.Fatal(err)
	}
	content := []byte("0123456789")
	if err := os.WriteFile(trash, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogDeleted, SourcePath: src, DestPath: trash,
			ChecksumBefore: "deadbeef", BatchID: "batch_1", ExecutedAt: time.Now()},
	})
	mgr := New(cat, &fakeJunction{}, testLogger(t))

	summary, err := mgr.UndoBatch("batch_1", false)
	if err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if summary.Undone != 1 {
		t.Fatalf("expected 1 undone, got %+v", summary)
	}
	if !exists(src) {
		t.Fatalf("expected source restored from trash")
	}
	if exists(trash) {
		t.Fatalf("expected trash entry gone")
	}
}

func TestUndoBatch_ArchivedDeletesOnlyTheZip(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "thesis.docx")
	archive := filepath.Join(base, "archive", "2026-07", "thesis.zip")
	if err := os.WriteFile(original, []byte("thesis"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, []byte("zip bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogArchived, SourcePath: original, DestPath: archive, BatchID: "b1", ExecutedAt: time.Now()},
	})
	mgr := New(cat, &fakeJunction{}, testLogger(t))

	summary, err := mgr.UndoBatch("b1", false)
	if err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if summary.Undone != 1 {
		t.Fatalf("expected 1 undone, got %+v", summary)
	}
	if exists(archive) {
		t.Fatalf("expected archive zip removed")
	}
	if !exists(original) {
		t.Fatalf("expected original untouched — archive never removed it")
	}
}

func TestUndoBatch_SymlinkedRemovesJunctionAndRestoresTarget(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "MyApp")
	target := filepath.Join(base, "apps", "MyApp")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "app.exe"), []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Simulate the junction itself as a plain directory stand-in — the fake
	// Junction.Remove below is what actually exercises "without following it".
	if err := os.MkdirAll(original, 0o755); err != nil {
		t.Fatal(err)
	}

	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogSymlinked, SourcePath: original, DestPath: target, BatchID: "b1", ExecutedAt: time.Now()},
	})
	junc := &fakeJunction{}
	mgr := New(cat, junc, testLogger(t))

	summary, err := mgr.UndoBatch("b1", false)
	if err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if summary.Undone != 1 {
		t.Fatalf("expected 1 undone, got %+v", summary)
	}
	if len(junc.removed) != 1 || junc.removed[0] != original {
		t.Fatalf("expected junction removed at %s, got %+v", original, junc.removed)
	}
	if !exists(filepath.Join(original, "app.exe")) {
		t.Fatalf("expected target tree restored to original path")
	}
}

func TestUndoBatch_MissingDestinationSkipped(t *testing.T) {
	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogMoved, SourcePath: "/nope/src", DestPath: "/nope/dst", BatchID: "b1", ExecutedAt: time.Now()},
	})
	mgr := New(cat, &fakeJunction{}, testLogger(t))

	summary, err := mgr.UndoBatch("b1", false)
	if err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if summary.Skipped != 1 || summary.Undone != 0 {
		t.Fatalf("expected skipped not undone, got %+v", summary)
	}
}

func TestUndoBatch_NewestFirstOrdering(t *testing.T) {
	base := t.TempDir()
	var order []int64

	cat := newFakeCatalog([]types.ActionLogEntry{
		{ID: 1, Kind: types.LogMoved, SourcePath: filepath.Join(base, "a-src"), DestPath: filepath.Join(base, "a-dst"), BatchID: "b1"},
		{ID: 2, Kind: types.LogMoved, SourcePath: filepath.Join(base, "b-src"), DestPath: filepath.Join(base, "b-dst"), BatchID: "b1"},
	})
	for _, e := range cat.entries {
		if err := os.WriteFile(e.DestPath, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Observe ordering via MarkUndone call sequence.
	mgr := New(&orderTrackingCatalog{fakeCatalog: cat, order: &order}, &fakeJunction{}, testLogger(t))

	if _, err := mgr.UndoBatch("b1", false); err != nil {
		t.Fatalf("undo batch: %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("expected newest-first undo order [2 1], got %v", order)
	}
}

type orderTrackingCatalog struct {
	*fakeCatalog
	order *[]int64
}

func (o *orderTrackingCatalog) MarkUndone(id int64) error {
	*o.order = append(*o.order, id)
	return o.fakeCatalog.MarkUndone(id)
}
