package storage

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameLength = 200

var disallowedFilenameChars = regexp.MustCompile(`[^\p{L}\p{N} ._()\-]+`)

// SanitizeFilename turns a client supplied name into a disk safe name:
// directory components are dropped, disallowed characters become "_" and
// the result is never empty or hidden.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = disallowedFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(strings.TrimSpace(name), ".")

	if name == "" || name == "/" {
		return "file"
	}

	if utf8.RuneCountInString(name) > maxFilenameLength {
		ext := path.Ext(name)
		runes := []rune(strings.TrimSuffix(name, ext))
		keep := maxFilenameLength - utf8.RuneCountInString(ext)
		if keep < 1 {
			keep = 1
			ext = ""
		}
		if keep < len(runes) {
			runes = runes[:keep]
		}
		name = string(runes) + ext
	}

	return name
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
