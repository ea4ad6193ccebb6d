package execution

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
)

// newZipWriter returns a zip.Writer whose Deflate method uses
// klauspost/compress's faster flate implementation, drop-in compatible with
// archive/zip's Deflate method constant. The compressor is registered on
// the writer itself: archive/zip already registers a global Deflate
// compressor, and registering a second one globally panics.
func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	return zw
}

// archiveDestination picks (or reuses) "<archive_root>/YYYY-MM/<stem>.zip",
// appending "_N" to the stem on collision.
func archiveDestination(archiveRoot, stem string, now time.Time) (string, error) {
	monthDir := filepath.Join(archiveRoot, now.Format("2006-01"))
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		return "", err
	}
	return collisionSafeName(monthDir, stem+".zip"), nil
}

// archiveFile zips a single file, stored as its leaf.
func archiveFile(zipPath, sourcePath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := newZipWriter(f)
	defer zw.Close()

	return addFileToZip(zw, sourcePath, filepath.Base(sourcePath))
}

// archiveDirectory zips every file under dirPath, stored with paths
// relative to the directory's parent.
func archiveDirectory(zipPath, dirPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := newZipWriter(f)
	defer zw.Close()

	parent := filepath.Dir(dirPath)
	return filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		return addFileToZip(zw, path, filepath.ToSlash(rel))
	})
}

func addFileToZip(zw *zip.Writer, sourcePath, nameInArchive string) error {
	in, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(nameInArchive)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
