package storage

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"Final Exam (v2).docx":  "Final Exam (v2).docx",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\notes.txt`: "notes.txt",
		"syl<la>bus?.pdf":       "syl_la_bus_.pdf",
		".hidden":               "hidden",
		"...":                   "file",
		"":                      "file",
		"Übungsblatt 1.pdf":     "Übungsblatt 1.pdf",
		"a|b*c:d.pdf":           "a_b_c_d.pdf",
		"  spaced name .txt  ":  "spaced name .txt",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestSanitizeFilenameTruncatesKeepingExtension(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	got := SanitizeFilename(long)
	assert.Equal(t, maxFilenameLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension("Report.PDF"))
	assert.Equal(t, "", Extension("README"))
	assert.Equal(t, "gz", Extension("a.tar.gz"))
}
