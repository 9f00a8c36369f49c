package volumes

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/brogergvhs/noveld/internal/providers"
)

// Volume wraps the scraped metadata with output naming.
type Volume struct {
	providers.VolumeMeta
}

var reSpaces = regexp.MustCompile(`\s+`)

// Sanitize turns an arbitrary title into a filename that is valid on
// Linux, macOS and Windows. Letters outside ASCII are kept.
func Sanitize(s string) string {
	s = norm.NFC.String(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			clean = append(clean, '_')
		case unicode.IsControl(r):
			clean = append(clean, ' ')
		default:
			clean = append(clean, r)
		}
	}

	out := reSpaces.ReplaceAllString(string(clean), " ")
	out = strings.Trim(out, " .")
	if out == "" {
		return "volumen"
	}

	return out
}

// DisplayTitle is the EPUB title: "<index>. <title>".
func (v Volume) DisplayTitle() string {
	return fmt.Sprintf("%d. %s", v.Index, v.Title)
}

func (v Volume) FolderName() string {
	return Sanitize(v.DisplayTitle()) + "_tmp"
}

func (v Volume) OutputEPUB() string {
	return Sanitize(v.DisplayTitle()) + ".epub"
}

func (v Volume) OutputEPUBPath(out string) string {
	return filepath.Join(out, v.OutputEPUB())
}
