package catalog

import (
	"regexp"
	"strings"
)

var (
	quoteReplacer = strings.NewReplacer(`"`, "", "'", "")
	nonWordRe     = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes an indicator phrase for matching. Quotes are
// dropped, '#' and other punctuation become spaces, and whitespace runs
// collapse to a single space. "1#高炉、工序能耗" becomes "1 高炉 工序能耗".
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	s = quoteReplacer.Replace(s)
	s = strings.ReplaceAll(s, "#", " ")
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
