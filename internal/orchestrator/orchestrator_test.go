package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/safety"
	"github.com/localdrive/triage/internal/types"
)

type fakeCatalog struct {
	files           []types.File
	classifications []types.Classification
}

func (f *fakeCatalog) UnclassifiedFiles(limit int) ([]types.File, error) {
	classified := map[int64]bool{}
	for _, c := range f.classifications {
		classified[c.FileID] = true
	}
	var out []types.File
	for _, file := range f.files {
		if !classified[file.ID] {
			out = append(out, file)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalog) UpsertClassification(c types.Classification) error {
	f.classifications = append(f.classifications, c)
	return nil
}

type fakeLLM struct {
	available      bool
	modelLoaded    bool
	generateErr    error
	generateResult func(prompt string) string
	calls          int
}

func (f *fakeLLM) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeLLM) HasModel(ctx context.Context) bool    { return f.modelLoaded }
func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateResult(prompt), nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.LogSettings{NoLogs: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func TestClassifyAll_ReconcilesMissingResultToKeep(t *testing.T) {
	cat := &fakeCatalog{files: []types.File{{ID: 1, Path: `C:\a.txt`}}}
	llmClient := &fakeLLM{available: true, modelLoaded: true, generateResult: func(string) string {
		return `[]`
	}}
	orch := New(cat, safety.New(safety.Default()), llmClient, "llama3", testLogger(t))

	summary := orch.ClassifyAll(context.Background())

	if summary.Classified != 1 {
		t.Fatalf("expected 1 classified (synthesized KEEP), got %+v", summary)
	}
	if summary.Errors != 1 {
		t.Fatalf("expected 1 error for the synthesized result, got %+v", summary)
	}
	if cat.classifications[0].Action != types.ActionKeep {
		t.Fatalf("expected synthesized KEEP, got %s", cat.classifications[0].Action)
	}
}

func TestClassifyAll_TransportOutageAbortsAfterThreeBatches(t *testing.T) {
	files := []types.File{{ID: 1, Path: "a"}, {ID: 2, Path: "b"}, {ID: 3, Path: "c"}}
	cat := &fakeCatalog{files: files}
	llmClient := &fakeLLM{available: true, modelLoaded: true, generateErr: errors.New("connection refused")}
	orch := New(cat, safety.New(safety.Default()), llmClient, "llama3", testLogger(t)).WithBatchSize(3)

	summary := orch.ClassifyAll(context.Background())

	if !summary.Aborted {
		t.Fatalf("expected orchestrator to abort, got %+v", summary)
	}
	if summary.Classified != 0 {
		t.Fatalf("expected zero classified on total outage, got %+v", summary)
	}
	if summary.Errors != 9 {
		t.Fatalf("expected 9 errors (3 files x 3 attempted batches), got %d", summary.Errors)
	}
	if summary.Batches != 3 {
		t.Fatalf("expected exactly 3 attempted batches, got %d", summary.Batches)
	}
	if len(cat.classifications) != 0 {
		t.Fatalf("expected no partial writes to classifications, got %+v", cat.classifications)
	}
}

func TestClassifyAll_SafetyOverrideAppliesOnPersist(t *testing.T) {
	cat := &fakeCatalog{files: []types.File{{ID: 1, Path: `C:\Windows\System32\notepad.exe`, Ext: ".exe"}}}
	llmClient := &fakeLLM{available: true, modelLoaded: true, generateResult: func(string) string {
		return `[{"path":"C:\\Windows\\System32\\notepad.exe","action":"DELETE_JUNK","confidence":1.0,"reason":"unused","category":"junk"}]`
	}}
	orch := New(cat, safety.New(safety.Default()), llmClient, "llama3", testLogger(t))

	summary := orch.ClassifyAll(context.Background())

	if summary.Overridden != 1 {
		t.Fatalf("expected 1 override, got %+v", summary)
	}
	if cat.classifications[0].Action != types.ActionKeep {
		t.Fatalf("expected forced KEEP on protected path, got %s", cat.classifications[0].Action)
	}
}

func TestPreflight_ReportsUnreachable(t *testing.T) {
	cat := &fakeCatalog{}
	llmClient := &fakeLLM{available: false}
	orch := New(cat, safety.New(safety.Default()), llmClient, "llama3", testLogger(t))

	pf := orch.Preflight(context.Background())
	if pf.LLMReachable {
		t.Fatalf("expected unreachable preflight")
	}
	if pf.ModelLoaded {
		t.Fatalf("model_loaded must not be probed when unreachable")
	}
}

func TestBuildBatchPrompt_ListsFileMetadata(t *testing.T) {
	files := []types.File{{ID: 1, Path: `C:\a.txt`, Leaf: "a.txt", Ext: ".txt", SizeBytes: 10}}
	prompt := buildBatchPrompt(files)
	if prompt == "" {
		t.Fatalf("expected non-empty prompt")
	}
	for _, want := range []string{"a.txt", ".txt"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to mention %q: %s", want, prompt)
		}
	}
}
