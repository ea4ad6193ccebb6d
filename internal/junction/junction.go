// Package junction provides the directory-redirection primitive used by
// the Execution Engine's MOVE_APP-on-directory dispatch. On Windows hosts
// the redirection is a Directory Junction (a reparse point, creatable
// without symlink privilege); on every other host — this engine's tests,
// and any dev build — a directory symlink stands in.
package junction

// Driver exposes the three redirection operations: create a redirection,
// remove one (never touching the target), and test whether a path is
// already one.
type Driver struct{}

// New constructs a Driver. It holds no state — every operation is a direct
// OS call parameterized by its arguments.
func New() *Driver { return &Driver{} }

// Create redirects link to target: after Create, traversing link resolves
// against target. link must not already exist; target must exist and be a
// directory.
func (d *Driver) Create(link, target string) error {
	return createRedirection(link, target)
}

// Remove removes the redirection at link without following it — the
// target tree is left untouched.
func (d *Driver) Remove(link string) error {
	return removeRedirection(link)
}

// IsRedirection reports whether path is itself a junction (or, on
// non-Windows test hosts, a directory symlink) rather than a plain
// directory. Used by the ingester to avoid re-scanning redirected trees;
// the result lands in File.IsRedirected.
func (d *Driver) IsRedirection(path string) (bool, error) {
	return isRedirection(path)
}
