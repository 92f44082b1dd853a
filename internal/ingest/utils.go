package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/post-advisor/constants"
)

var reUnsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// SecureFilename reduces name to a flat ASCII filename that is safe to join onto
// the upload directory: compatibility-decompose, drop non-ASCII, turn path
// separators into spaces, join whitespace runs with '_', drop everything outside
// [A-Za-z0-9_.-], trim leading/trailing '.' and '_'. The result may be empty.
//
//	"My cover letter.pdf"      -> "My_cover_letter.pdf"
//	"../../../etc/passwd"      -> "etc_passwd"
//	"i contain cool ümläuts.txt" -> "i_contain_cool_umlauts.txt"
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	s := b.String()
	s = strings.NewReplacer("/", " ", `\`, " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = reUnsafeFilename.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}
