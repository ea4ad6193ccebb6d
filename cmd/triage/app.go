package main

import (
	"github.com/localdrive/triage/internal/catalog"
	"github.com/localdrive/triage/internal/config"
	"github.com/localdrive/triage/internal/execution"
	"github.com/localdrive/triage/internal/junction"
	"github.com/localdrive/triage/internal/llm"
	"github.com/localdrive/triage/internal/logging"
	"github.com/localdrive/triage/internal/orchestrator"
	"github.com/localdrive/triage/internal/safety"
	"github.com/localdrive/triage/internal/undo"
)

// app bundles every subsystem a subcommand might need. Subcommands open
// one per invocation and close the catalog on exit; there is never more
// than one of these alive at a time.
type app struct {
	cfg          *config.Config
	log          *logging.Logger
	catalog      *catalog.Catalog
	safety       *safety.Engine
	junction     *junction.Driver
	orchestrator *orchestrator.Orchestrator
	execution    *execution.Engine
	undo         *undo.Manager
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogSettings)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	safetyCfg := safety.Default()
	safetyCfg.UncertaintyThreshold = cfg.Thresholds.Uncertainty
	safetyCfg.AutoApproveThreshold = cfg.Thresholds.AutoApprove
	safetyCfg.DeleteThreshold = cfg.Thresholds.Delete
	safetyEngine := safety.New(safetyCfg)

	junctionDriver := junction.New()

	llmClient := llm.New(cfg.LLM.Endpoint(), cfg.LLM.Model).
		WithTimeouts(cfg.LLM.GenerateTimeout(), cfg.LLM.ProbeTimeout())
	orch := orchestrator.New(cat, safetyEngine, llmClient, cfg.LLM.Model, log)
	if cfg.BatchSize > 0 {
		orch = orch.WithBatchSize(cfg.BatchSize)
	}

	roots := execution.Roots{
		TrashRoot:       cfg.TrashRoot,
		ArchiveRoot:     cfg.ArchiveRoot,
		AppsRoot:        cfg.AppsRoot,
		DocumentsRoot:   cfg.DocumentsRoot,
		MediaPhotosRoot: cfg.MediaPhotosRoot,
		MediaVideosRoot: cfg.MediaVideosRoot,
		MediaMusicRoot:  cfg.MediaMusicRoot,
		ProjectsRoot:    cfg.ProjectsRoot,
		SummaryRoot:     cfg.SummaryRoot,
	}
	exec := execution.New(cat, junctionDriver, roots, log)
	undoMgr := undo.New(cat, junctionDriver, log).WithSummaryRoot(cfg.SummaryRoot)

	return &app{
		cfg:          cfg,
		log:          log,
		catalog:      cat,
		safety:       safetyEngine,
		junction:     junctionDriver,
		orchestrator: orch,
		execution:    exec,
		undo:         undoMgr,
	}, nil
}

func (a *app) Close() error {
	return a.catalog.Close()
}
