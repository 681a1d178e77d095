package constants

import "strings"

// PDFContentType is the only media type the upload boundary accepts.
const PDFContentType = "application/pdf"

// AllowedExtensions holds the allowed file extensions for invoice uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether the extension (with or without dot) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
