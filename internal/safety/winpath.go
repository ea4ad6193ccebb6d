package safety

import "github.com/localdrive/triage/internal/winpath"

// These are thin aliases onto internal/winpath, which also backs the
// Execution Engine's destination-path arithmetic — kept so engine.go reads
// the same as before the two callers were consolidated onto one
// implementation.
var (
	isDescendantOrEqual = winpath.IsDescendantOrEqual
	extOf               = winpath.ExtOf
	leafOf              = winpath.LeafOf
)
