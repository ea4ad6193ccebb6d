package execution

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// writeSummarySidecar atomically writes summary as "<root>/<batchID>.json"
// so a crash mid-write can never leave an operator reading a half-written
// run summary. A blank root or batch id disables the sidecar.
func writeSummarySidecar(root, batchID string, summary any) error {
	if root == "" || batchID == "" {
		return nil
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	return atomic.WriteFile(filepath.Join(root, batchID+".json"), bytes.NewReader(b))
}
