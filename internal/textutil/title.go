package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title collapses whitespace and title-cases each word for display, so
// "taylor   swift" becomes "Taylor Swift".
func Title(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(value)
}
