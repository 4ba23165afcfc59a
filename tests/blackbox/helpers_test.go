//go:build blackbox

package blackbox

import (
	"regexp"
	"strings"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

var runIDPattern = regexp.MustCompile(`Run ID: (\S+)`)

// runID extracts the run ID printed by "solvency run".
func runID(out string) string {
	m := runIDPattern.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return m[1]
}
