package helpers

import "strings"

// SplitTrailingParen splits a label of the form "Name (45)" into its name
// and the content of the trailing parenthesized group. Labels without a
// parenthesized suffix return the trimmed label and an empty string.
func SplitTrailingParen(label string) (string, string) {
	idx := strings.LastIndex(label, "(")
	if idx < 0 {
		return strings.TrimSpace(label), ""
	}
	name := strings.TrimSpace(label[:idx])
	count := strings.TrimSpace(strings.Trim(strings.TrimSpace(label[idx+1:]), ")"))
	return name, count
}
