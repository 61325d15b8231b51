package survey

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t.,!?")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// MatchOptions returns the options mentioned in a transcript, in option
// order. An exact match (ignoring case, spacing and trailing punctuation)
// wins outright; otherwise every option whose label occurs in the
// transcript is returned.
func MatchOptions(transcript string, options []string) []string {
	said := normalizeLabel(transcript)
	if said == "" {
		return nil
	}
	for _, opt := range options {
		if normalizeLabel(opt) == said {
			return []string{opt}
		}
	}
	var out []string
	for _, opt := range options {
		label := normalizeLabel(opt)
		if label != "" && strings.Contains(said, label) {
			out = append(out, opt)
		}
	}
	return out
}
