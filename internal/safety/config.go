package safety

import "strings"

// Config bundles the Safety Engine's compile-time-constant sets. These
// are NOT user-editable in the shipped binary, but Config is built as a
// plain struct so tests can construct alternate instances.
type Config struct {
	ProtectedRoots      []string
	ProtectedOwners     map[string]struct{}
	GuardianExtensions  map[string]struct{}
	SensitiveSubstrings []string

	UncertaintyThreshold float64
	AutoApproveThreshold float64
	DeleteThreshold      float64
}

// Default returns the production Safety Engine configuration: the Windows
// system locations, protected owners, guardian extensions, sensitive
// substrings, and the three confidence thresholds.
func Default() Config {
	return Config{
		ProtectedRoots: []string{
			`C:\Windows`,
			`C:\Program Files\WindowsApps`,
			`C:\ProgramData\Microsoft`,
			`C:\Recovery`,
			`C:\$Recycle.Bin`,
			`C:\System Volume Information`,
			`C:\Boot`,
			`C:\bootmgr`,
			`C:\BOOTNXT`,
			`C:\Program Files\Windows Defender`,
			`C:\Program Files\Windows Defender Advanced Threat Protection`,
			`C:\Program Files\Windows Mail`,
			`C:\Program Files\Windows Media Player`,
			`C:\Program Files\Windows Multimedia Platform`,
			`C:\Program Files\Windows NT`,
			`C:\Program Files\Windows Photo Viewer`,
			`C:\Program Files\Windows Portable Devices`,
			`C:\Program Files\Windows Security`,
			`C:\Program Files\WindowsPowerShell`,
		},
		ProtectedOwners: setOf(
			"system",
			"nt authority\\system",
			"trustedinstaller",
			"nt service\\trustedinstaller",
		),
		GuardianExtensions: setOf(
			// documents
			".doc", ".docx", ".pdf", ".txt", ".rtf", ".odt", ".xls", ".xlsx",
			".ppt", ".pptx", ".csv", ".md",
			// photos/videos/audio
			".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".heic", ".raw",
			".mp4", ".mov", ".avi", ".mkv", ".wmv", ".m4v",
			".mp3", ".wav", ".flac", ".aac", ".m4a", ".ogg",
			// source code
			".go", ".py", ".js", ".ts", ".java", ".c", ".cpp", ".h", ".hpp",
			".cs", ".rb", ".rs", ".swift", ".kt", ".php", ".sh", ".sql",
		),
		SensitiveSubstrings: []string{
			".env", "_key", "id_rsa", "credentials", ".pem", ".pfx",
		},
		UncertaintyThreshold: 0.4,
		AutoApproveThreshold: 0.7,
		DeleteThreshold:      0.85,
	}
}

func setOf(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[strings.ToLower(v)] = struct{}{}
	}
	return m
}
