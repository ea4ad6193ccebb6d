package execution

import (
	"strings"

	"github.com/localdrive/triage/internal/winpath"
)

type category int

const (
	categoryDocuments category = iota
	categoryMediaPhotos
	categoryMediaVideos
	categoryMediaMusic
	categoryProjects
)

var photoExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tiff": true, ".heic": true, ".raw": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".wmv": true, ".m4v": true,
}

var musicExts = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".m4a": true, ".ogg": true,
}

var pathHintSubstrings = []string{"project", "repos", "github"}

// classifyCategory determines the destination category from extension,
// with path hints overriding to "projects". Default is documents.
func classifyCategory(path, ext string) category {
	lowerPath := strings.ToLower(path)
	for _, hint := range pathHintSubstrings {
		if strings.Contains(lowerPath, hint) {
			return categoryProjects
		}
	}
	switch {
	case photoExts[ext]:
		return categoryMediaPhotos
	case videoExts[ext]:
		return categoryMediaVideos
	case musicExts[ext]:
		return categoryMediaMusic
	default:
		return categoryDocuments
	}
}

func rootFor(c category, cfg Roots) string {
	switch c {
	case categoryMediaPhotos:
		return cfg.MediaPhotosRoot
	case categoryMediaVideos:
		return cfg.MediaVideosRoot
	case categoryMediaMusic:
		return cfg.MediaMusicRoot
	case categoryProjects:
		return cfg.ProjectsRoot
	default:
		return cfg.DocumentsRoot
	}
}

// destinationFor computes the MOVE_DATA/MOVE_APP-on-file target path:
// the category root plus the source path with its drive letter and
// first three directory components stripped; a source with fewer than four
// directory components (excluding the drive) reduces to "<root>\<leaf>".
func destinationFor(path, ext string, cfg Roots) string {
	root := rootFor(classifyCategory(path, ext), cfg)

	segs := winpath.Split(path)
	if winpath.HasDriveLetter(segs) {
		segs = segs[1:]
	}

	if len(segs) < 4 {
		return joinWindows(root, segs[len(segs)-1])
	}
	return joinWindows(append([]string{root}, segs[3:]...)...)
}

func joinWindows(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed = append(trimmed, strings.Trim(p, `\`))
	}
	return strings.Join(trimmed, `\`)
}
