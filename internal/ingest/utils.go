package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/permit-compliance/constants"
)

// AllowedExt reports whether ext (with or without the dot) names a format
// the extractor understands.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// Candidate reports whether path should be uploaded: a supported extension
// and not a lock or partial-download file left by an editor or browser.
func Candidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".#") {
		return false
	}
	return AllowedExt(filepath.Ext(base))
}

// IsHidden reports whether the last path element starts with a dot. The
// current directory "." is not hidden.
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
