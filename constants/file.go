package constants

import "strings"

const (
	PDF = "PDF"
	DOC = "DOC"
	XLS = "XLS"
)

// AllowedExtensions holds the extensions the extraction pipeline can linearize.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// DocumentExtensions holds the extensions discovery treats as document links.
var DocumentExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for a normalized extension, or "".
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "doc", "docx":
		return DOC
	case "xls", "xlsx":
		return XLS
	default:
		return ""
	}
}
