package docsel

import (
	"strconv"
	"strings"
	"unicode"
)

// HeadingConventions lists the style-name prefixes that mark a paragraph as
// a heading. Prefixes are compared case-insensitively.
var HeadingConventions = []string{
	"Heading",
	"标题",
}

// IsHeadingStyle reports whether a style name follows a heading convention.
func IsHeadingStyle(name string) bool {
	_, ok := headingSuffix(name)
	return ok
}

// HeadingLevel returns the numeric level of a heading style ("Heading 2"
// is 2). Headings without a level number report 1. ok is false when name
// is not a heading style.
func HeadingLevel(name string) (level int, ok bool) {
	rest, ok := headingSuffix(name)
	if !ok {
		return 0, false
	}
	rest = strings.TrimFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
	if n, err := strconv.Atoi(rest); err == nil && n > 0 {
		return n, true
	}
	return 1, true
}

func headingSuffix(name string) (string, bool) {
	for _, prefix := range HeadingConventions {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			return name[len(prefix):], true
		}
	}
	return "", false
}
