package storage

import (
	"strings"
	"unicode"
)

// FormNameFromURL derives a file name from a form URL: the path segment
// before the last one, so ".../d/e/<id>/viewform" names the form <id>.
func FormNameFromURL(formURL string) string {
	if !strings.Contains(formURL, "/") {
		return "survey"
	}
	if i := strings.IndexAny(formURL, "?#"); i >= 0 {
		formURL = formURL[:i]
	}
	parts := strings.Split(formURL, "/")
	name := SanitizeFormName(parts[len(parts)-2])
	if name == "" {
		return "survey"
	}
	return name
}

// SanitizeFormName makes a form title safe for use as a file name. Letters,
// digits, '-' and '_' are kept; spaces and everything else become '_'.
func SanitizeFormName(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// FormNameFromTitle names a form after its page title, falling back to
// "form_<id>" when the title is unusable.
func FormNameFromTitle(title, formURL string) string {
	if name := SanitizeFormName(title); strings.Trim(name, "_") != "" {
		return name
	}
	return "form_" + FormNameFromURL(formURL)
}
