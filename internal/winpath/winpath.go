// Package winpath implements the subset of Windows native-path semantics
// the engine needs — case-insensitive, segment-exact containment and
// component splitting — by hand rather than via path/filepath, so the
// engine reasons about genuine Windows paths identically on every host it
// is tested on.
package winpath

import "strings"

// Split splits a Windows-style path into its backslash-delimited segments,
// trimming any trailing separator and ignoring empty segments produced by
// doubled separators or a leading separator.
func Split(path string) []string {
	path = strings.ReplaceAll(path, "/", `\`)
	parts := strings.Split(path, `\`)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// IsDescendantOrEqual reports whether candidate names a path equal to root,
// or nested underneath it, comparing case-insensitively and segment-wise
// (never by substring — "C:\Windows2" must not match root "C:\Windows").
func IsDescendantOrEqual(candidate, root string) bool {
	c := Split(candidate)
	r := Split(root)
	if len(r) > len(c) {
		return false
	}
	for i, seg := range r {
		if !strings.EqualFold(seg, c[i]) {
			return false
		}
	}
	return true
}

// ExtOf returns the lowercased extension including its leading dot, or ""
// if path has none.
func ExtOf(path string) string {
	segs := Split(path)
	if len(segs) == 0 {
		return ""
	}
	leaf := segs[len(segs)-1]
	idx := strings.LastIndexByte(leaf, '.')
	if idx <= 0 || idx == len(leaf)-1 {
		return ""
	}
	return strings.ToLower(leaf[idx:])
}

// LeafOf returns the final path segment, or path unchanged if it has none.
func LeafOf(path string) string {
	segs := Split(path)
	if len(segs) == 0 {
		return path
	}
	return segs[len(segs)-1]
}

// HasDriveLetter reports whether the first segment looks like a Windows
// drive specifier ("C:"), which is not counted as a directory component by
// the Execution Engine's destination-path arithmetic.
func HasDriveLetter(segs []string) bool {
	return len(segs) > 0 && len(segs[0]) == 2 && segs[0][1] == ':'
}
