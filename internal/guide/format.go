package guide

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSet renders a set's values as `reps × "N s" × "N kg" @ rpe`, with
// absent fields omitted. Used for notification bodies and set summaries.
func FormatSet(reps, timeSeconds *int, weight, rpe *float64) string {
	var parts []string
	if reps != nil {
		parts = append(parts, strconv.Itoa(*reps))
	}
	if timeSeconds != nil {
		parts = append(parts, fmt.Sprintf("%d s", *timeSeconds))
	}
	if weight != nil {
		parts = append(parts, fmt.Sprintf("%s kg", strconv.FormatFloat(*weight, 'f', -1, 64)))
	}
	result := strings.Join(parts, " × ")
	if rpe != nil {
		result += fmt.Sprintf(" @ %s", strconv.FormatFloat(*rpe, 'f', -1, 64))
	}
	return result
}
