// Package orchestrator drives classification: it pulls unclassified files
// from the Catalog in batches, sends metadata-only prompts to the local
// LLM, reconciles the tolerant-parsed response against the batch, runs
// every verdict through the Safety Engine, and persists the result.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/localdrive/triage/internal/llm"
	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/safety"
	"github.com/localdrive/triage/internal/types"
)

const defaultBatchSize = 50
const maxConsecutiveFailures = 3

// Catalog is the subset of *catalog.Catalog the Orchestrator depends on,
// narrowed to an interface so tests can exercise the orchestrator without a
// live sqlite file.
type Catalog interface {
	UnclassifiedFiles(limit int) ([]types.File, error)
	UpsertClassification(types.Classification) error
}

// LLM is the subset of *llm.Client the Orchestrator depends on.
type LLM interface {
	IsAvailable(ctx context.Context) bool
	HasModel(ctx context.Context) bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Preflight reports the loopback LLM's availability and whether the
// configured model is loaded.
type Preflight struct {
	LLMReachable bool
	ModelLoaded  bool
	ModelName    string
}

// Orchestrator wires a Catalog, a Safety Engine, and an LLM client.
type Orchestrator struct {
	catalog   Catalog
	safety    *safety.Engine
	client    LLM
	modelName string
	batchSize int
	log       *logging.Logger
}

func New(catalog Catalog, safetyEngine *safety.Engine, client LLM, modelName string, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:   catalog,
		safety:    safetyEngine,
		client:    client,
		modelName: modelName,
		batchSize: defaultBatchSize,
		log:       log,
	}
}

// WithBatchSize overrides the default batch size of 50; the CLI passes the
// configured batch_size through it, and tests use it to pick a batch size.
// Non-positive values keep the current size.
func (o *Orchestrator) WithBatchSize(n int) *Orchestrator {
	if n > 0 {
		o.batchSize = n
	}
	return o
}

func (o *Orchestrator) Preflight(ctx context.Context) Preflight {
	pf := Preflight{ModelName: o.modelName}
	pf.LLMReachable = o.client.IsAvailable(ctx)
	if pf.LLMReachable {
		pf.ModelLoaded = o.client.HasModel(ctx)
	}
	o.log.Infof("preflight check: reachable=%v model_loaded=%v model=%s", pf.LLMReachable, pf.ModelLoaded, pf.ModelName)
	return pf
}

// ClassifyAll iterates the unclassified view in fixed-size batches until it
// is empty or three consecutive batches add zero classifications.
func (o *Orchestrator) ClassifyAll(ctx context.Context) types.ClassifySummary {
	var summary types.ClassifySummary
	consecutiveFailures := 0

	for {
		files, err := o.catalog.UnclassifiedFiles(o.batchSize)
		if err != nil {
			o.log.Errorf("fetch unclassified batch: %v", err)
			break
		}
		if len(files) == 0 {
			break
		}

		summary.Batches++
		classifiedBefore := summary.Classified
		o.log.Infof("processing batch %d — %d files", summary.Batches, len(files))

		o.classifyBatch(ctx, files, &summary)

		if summary.Classified == classifiedBefore {
			consecutiveFailures++
			if consecutiveFailures >= maxConsecutiveFailures {
				o.log.Errorf("aborting — %d consecutive batch failures", consecutiveFailures)
				summary.Aborted = true
				break
			}
		} else {
			consecutiveFailures = 0
		}
	}

	o.log.Successf("classification complete: classified=%d overridden=%d errors=%d batches=%d",
		summary.Classified, summary.Overridden, summary.Errors, summary.Batches)
	return summary
}

func (o *Orchestrator) classifyBatch(ctx context.Context, files []types.File, summary *types.ClassifySummary) {
	prompt := buildBatchPrompt(files)

	response, err := o.client.Generate(ctx, prompt)
	if err != nil {
		o.log.Errorf("batch %d failed: %v — marking as errors", summary.Batches, err)
		summary.Errors += len(files)
		return
	}

	results := llm.ParseResponse(response, len(files), func(msg string) {
		o.log.Warnf("%s", msg)
	})

	resultByPath := make(map[string]llm.RawResult, len(results))
	for _, r := range results {
		resultByPath[r.Path] = r
	}

	for _, f := range files {
		result, ok := resultByPath[f.Path]
		if !ok {
			o.log.Warnf("no llm result for %s — defaulting to KEEP", f.Path)
			result = llm.RawResult{
				Path: f.Path, Action: types.ActionKeep, Confidence: 0.0,
				Reason: "No AI classification returned",
			}
			summary.Errors++
		}

		verdict := o.safety.Check(f.Path, result.Action, result.Confidence, f.Owner, f.Ext)
		if verdict.Overridden {
			summary.Overridden++
		}

		err := o.catalog.UpsertClassification(types.Classification{
			FileID:       f.ID,
			Action:       verdict.FinalAction,
			Confidence:   result.Confidence,
			Reason:       result.Reason,
			Category:     result.Category,
			Overridden:   verdict.Overridden,
			OverrideWhy:  verdict.OverrideReason,
			ClassifiedAt: time.Now(),
		})
		if err != nil {
			o.log.Errorf("store classification for %s: %v", f.Path, err)
			summary.Errors++
			continue
		}
		summary.Classified++
	}
}

// buildBatchPrompt enumerates metadata only: path, leaf, extension, size,
// modified, accessed. File contents are never transmitted.
func buildBatchPrompt(files []types.File) string {
	out := "Classify these files:\n\n"
	for _, f := range files {
		out += fmt.Sprintf("- path: %s, name: %s, ext: %s, size: %d bytes, modified: %s, accessed: %s\n",
			f.Path, f.Leaf, f.Ext, f.SizeBytes,
			f.ModifiedAt.Format(time.RFC3339), f.AccessedAt.Format(time.RFC3339))
	}
	return out
}
