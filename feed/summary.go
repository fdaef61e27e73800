package feed

// summaryMaxLen is the display length limit for descriptions.
const summaryMaxLen = 100

// Summarize truncates a description to 100 characters and appends an
// ellipsis marker. Descriptions at or under the limit, including the
// empty string, are returned unmodified.
func Summarize(description string) string {
	runes := []rune(description)
	if len(runes) <= summaryMaxLen {
		return description
	}
	return string(runes[:summaryMaxLen]) + "..."
}
