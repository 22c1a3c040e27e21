package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._\s-]`)

// SanitizeFilename cleans an uploaded filename for logs and error messages.
// Directory parts are dropped, unsafe characters removed, and the result
// capped at 255 bytes.
func SanitizeFilename(filename string) string {
	sanitized := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	sanitized = strings.Trim(sanitized, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		sanitized = strings.ToValidUTF8(sanitized[:255], "")
	}
	return sanitized
}
