package constants

import "strings"

// Kind is the closed set of document kinds the extraction coordinator dispatches on.
type Kind string

const (
	PDF   Kind = "PDF"
	IMAGE Kind = "IMAGE"
)

// AllowedExtensions holds the upload allowlist (lowercased, without '.') mapped to its kind.
var AllowedExtensions = map[string]Kind{
	"pdf":  PDF,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
	"webp": IMAGE,
	"avif": IMAGE,
}

// MaxUploadMBDefault caps multipart uploads.
const MaxUploadMBDefault = 50

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind returns the document kind for an extension, or "" when unsupported.
func MapExtToKind(ext string) Kind {
	return AllowedExtensions[NormalizeExt(ext)]
}

// IsAllowedExt reports whether ext belongs to the upload allowlist.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
