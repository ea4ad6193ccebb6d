package execution

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

const checksumChunkSize = 8 * 1024

// streamChecksum computes a SHA-256 hex digest by reading path in 8 KiB
// chunks, never loading the whole file into memory.
func streamChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
