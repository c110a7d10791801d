package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 100

var (
	htmlTags     = regexp.MustCompile(`<[^>]*>`)
	unsafeChars  = regexp.MustCompile("[<>\"'`]")
	repeatSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeName cleans a user supplied display or wrestler name: markup and
// quote characters are dropped, whitespace is collapsed and the result is cut
// to MaxNameLength runes.
func SanitizeName(s string) string {
	s = htmlTags.ReplaceAllString(s, "")
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(repeatSpaces.ReplaceAllString(s, " "))
	if utf8.RuneCountInString(s) > MaxNameLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxNameLength]))
	}
	return s
}
