package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._\s-]`)

// Extensions the document parser knows how to handle. Everything else is
// rejected at upload rather than silently treated as text.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".pdf":  true,
	".txt":  true,
	".md":   true,
}

// SanitizeFilename cleans filename for safe storage by removing dangerous
// characters and limiting length. It trims spaces and dots, removes parent
// directory references, and filters out non-alphanumeric characters except
// for safe punctuation.
func SanitizeFilename(filename string) string {
	sanitized := strings.Trim(filename, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		sanitized = sanitized[:255]
	}
	return sanitized
}

// AllowedUploadExtension reports whether the filename carries an
// extension the document parser supports.
func AllowedUploadExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}
