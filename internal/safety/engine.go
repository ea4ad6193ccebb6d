// Package safety implements the Safety Engine: the four-layer override
// policy with absolute authority over any AI classification verdict. It
// is deliberately the simplest package in the repo. Check is a pure
// function over its inputs plus an immutable Config, and it can never
// itself fail.
package safety

import (
	"strings"

	"github.com/localdrive/triage/internal/types"
)

// Verdict is the Safety Engine's record of a single check: the proposed
// action, what actually survives, and every review/warning flag the four
// layers raised along the way.
type Verdict struct {
	OriginalAction types.Action
	FinalAction    types.Action
	Overridden     bool
	OverrideReason string

	IsProtected         bool
	IsGuardianProtected bool
	IsSensitive         bool
	NeedsReview         bool

	Warnings []string
}

// Engine evaluates Check against an immutable Config.
type Engine struct {
	cfg Config
}

// New constructs an Engine from cfg. Pass safety.Default() for production
// behavior; tests may construct a reduced Config directly.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Check runs the four-layer pipeline and returns the final verdict. path
// and extension are taken as given; extension is inferred from path's
// suffix if empty, and an empty owner is treated as unprotected.
func (e *Engine) Check(path string, proposed types.Action, confidence float64, owner, extension string) Verdict {
	v := Verdict{OriginalAction: proposed, FinalAction: proposed}

	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext == "" {
		ext = extOf(path)
	}
	owner = strings.ToLower(strings.TrimSpace(owner))
	leaf := strings.ToLower(leafOf(path))

	// --- Layer 1: protected paths and owners (absolute, short-circuits) ---
	for _, root := range e.cfg.ProtectedRoots {
		if isDescendantOrEqual(path, root) {
			e.override(&v, true, "protected path: "+root)
			v.IsProtected = true
			return v
		}
	}
	if owner != "" {
		if _, ok := e.cfg.ProtectedOwners[owner]; ok {
			e.override(&v, true, "protected owner: "+owner)
			v.IsProtected = true
			return v
		}
	}

	// --- Layer 2: Document Guardian (deletion-only) ---
	if v.FinalAction.IsDelete() {
		if _, guarded := e.cfg.GuardianExtensions[ext]; guarded {
			e.override(&v, true, "guardian-protected extension: "+ext)
			v.IsGuardianProtected = true
			v.NeedsReview = true
		}
	}

	// --- Layer 2b: sensitive patterns (not action-gated for the flag itself) ---
	for _, pat := range e.cfg.SensitiveSubstrings {
		if strings.Contains(leaf, strings.ToLower(pat)) {
			v.IsSensitive = true
			if v.FinalAction.IsDelete() {
				e.override(&v, true, "sensitive filename pattern: "+pat)
				v.NeedsReview = true
			}
			break
		}
	}

	// --- Layer 3: confidence gates (last gate on destructive actions) ---
	switch {
	case v.FinalAction.IsDelete() && confidence < e.cfg.DeleteThreshold:
		e.override(&v, true, "confidence below delete threshold")
		v.NeedsReview = true
	case confidence < e.cfg.UncertaintyThreshold:
		v.NeedsReview = true
		v.Warnings = append(v.Warnings, "confidence below uncertainty threshold")
	case confidence < e.cfg.AutoApproveThreshold:
		v.NeedsReview = true
	}

	return v
}

// override applies a forced KEEP. The earliest-tripped layer's reason
// wins the OverrideReason field; later overrides only keep the flag set.
func (e *Engine) override(v *Verdict, toKeep bool, reason string) {
	if toKeep {
		v.FinalAction = types.ActionKeep
	}
	if !v.Overridden {
		v.OverrideReason = reason
	}
	v.Overridden = true
}
