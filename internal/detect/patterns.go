package detect

import "regexp"

// Pattern is a named rule for one class of secret.
type Pattern struct {
	Label string
	Re    *regexp.Regexp

	// Fallback patterns only report matches that no claiming pattern
	// overlaps within the same evaluation unit.
	Fallback bool

	// Claims marks token-shaped patterns whose matches hide overlapping
	// fallback matches.
	Claims bool
}

// Patterns are compiled at init; a bad expression panics at startup.
// Order fixes the order labels are reported in.
var patterns = []Pattern{
	{Label: "AWS Access Key", Re: regexp.MustCompile(`AKIA[0-9A-Z]{16}`), Claims: true},
	{Label: "OpenAI Key", Re: regexp.MustCompile(`sk-[a-zA-Z0-9]{48}`), Claims: true},
	{Label: "Slack Token", Re: regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9-]{10,48}`), Claims: true},
	{Label: "Generic Token", Re: regexp.MustCompile(`[a-zA-Z0-9_-]{32,}`), Fallback: true},
	{Label: "Password", Re: regexp.MustCompile(`(?i)password\s*=?\s*["']?.+`)},
}

// Patterns returns a copy of the fixed pattern set.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Labels returns the pattern labels in reporting order.
func Labels() []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.Label
	}
	return out
}

// MatchLine returns the labels matching one evaluation unit (a line, or a
// whole file in content mode), in pattern order.
func MatchLine(line []byte) []string {
	var claimed [][]int
	hits := make([]bool, len(patterns))

	for i, p := range patterns {
		if p.Fallback {
			continue
		}
		locs := p.Re.FindAllIndex(line, -1)
		hits[i] = len(locs) > 0
		if p.Claims {
			claimed = append(claimed, locs...)
		}
	}
	for i, p := range patterns {
		if p.Fallback {
			hits[i] = unclaimed(p.Re.FindAllIndex(line, -1), claimed)
		}
	}

	var labels []string
	for i, p := range patterns {
		if hits[i] {
			labels = append(labels, p.Label)
		}
	}
	return labels
}

// unclaimed reports whether any match in locs lies outside every claimed span.
func unclaimed(locs, claimed [][]int) bool {
	for _, loc := range locs {
		overlapped := false
		for _, c := range claimed {
			if loc[0] < c[1] && c[0] < loc[1] {
				overlapped = true
				break
			}
		}
		if !overlapped {
			return true
		}
	}
	return false
}
