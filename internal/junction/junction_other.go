//go:build !windows

package junction

import (
	"os"

	"github.com/pkg/errors"
)

// On non-Windows hosts — this engine's test suite, and any dev build — a
// directory symlink stands in for the Windows Directory Junction.

func createRedirection(link, target string) error {
	if _, err := os.Lstat(link); err == nil {
		return errors.New("junction link path already exists")
	}
	fi, err := os.Stat(target)
	if err != nil {
		return errors.Wrap(err, "junction target must be an existing directory")
	}
	if !fi.IsDir() {
		return errors.New("junction target must be an existing directory")
	}
	return os.Symlink(target, link)
}

func removeRedirection(link string) error {
	fi, err := os.Lstat(link)
	if err != nil {
		return errors.Wrap(err, "stat junction link")
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return errors.New("path is not a redirection")
	}
	return os.Remove(link)
}

func isRedirection(path string) (bool, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return fi.Mode()&os.ModeSymlink != 0, nil
}
