package feed

import (
	"regexp"
	"strconv"
)

// iso8601Duration matches the duration grammar the API reports for
// videos, e.g. "PT45S", "PT1M30S", "PT1H2M3S", "P1DT2H".
var iso8601Duration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDurationSeconds parses an ISO 8601 duration into total seconds.
// The full days/hours/minutes/seconds grammar is handled so hour-scale
// durations are never misread. Returns false for anything it cannot parse.
func parseDurationSeconds(s string) (int, bool) {
	m := iso8601Duration.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	days, hours, mins, secs := m[1], m[2], m[3], m[4]
	if days == "" && hours == "" && mins == "" && secs == "" {
		return 0, false
	}

	total := 0
	for _, part := range []struct {
		val  string
		mult int
	}{
		{days, 86400},
		{hours, 3600},
		{mins, 60},
		{secs, 1},
	} {
		if part.val == "" {
			continue
		}
		n, err := strconv.Atoi(part.val)
		if err != nil {
			return 0, false
		}
		total += n * part.mult
	}
	return total, true
}
