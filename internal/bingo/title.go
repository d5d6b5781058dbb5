package bingo

import (
	"regexp"
	"strings"
)

var (
	nonWord     = regexp.MustCompile(`\W`)
	nonWordRuns = regexp.MustCompile(`\W+`)
)

// PopularityKey folds a game title into the key used to group repeats of
// the same theme: lower case with every non-word character removed.
// "Rock Night" and "rock night!" both become "rocknight".
func PopularityKey(title string) string {
	return nonWord.ReplaceAllString(strings.ToLower(title), "")
}

// ThemeSlug turns a game title into a URL friendly theme identifier.
// "Rock Night!" becomes "rock-night".
func ThemeSlug(title string) string {
	s := nonWordRuns.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
