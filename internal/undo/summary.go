package undo

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// writeSummarySidecar mirrors the Execution Engine's sidecar writer
// (internal/execution/summary.go): atomically write "<root>/<name>.json"
// so a crash mid-write never leaves a half-written undo summary.
func writeSummarySidecar(root, name string, summary any) error {
	if root == "" || name == "" {
		return nil
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	return atomic.WriteFile(filepath.Join(root, name+".json"), bytes.NewReader(b))
}
