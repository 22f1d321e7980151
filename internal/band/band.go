package band

import (
	"regexp"
	"strings"
)

// Band is a salary/compensation band identifier. The set is closed: L1 through L5.
type Band string

const (
	L1 Band = "L1"
	L2 Band = "L2"
	L3 Band = "L3"
	L4 Band = "L4"
	L5 Band = "L5"
)

// All lists every band in seniority order.
var All = []Band{L1, L2, L3, L4, L5}

var labels = map[Band]string{
	L1: "Junior Level",
	L2: "Mid Level",
	L3: "Senior Level",
	L4: "Lead Level",
	L5: "Executive Level",
}

var bandPattern = regexp.MustCompile(`L[1-5]`)

// Label returns the human-readable level name for the band.
func (b Band) Label() string {
	if label, ok := labels[b]; ok {
		return label
	}
	return "Unknown"
}

// Level returns the numeric seniority (1..5), or 0 for an invalid band.
func (b Band) Level() int {
	if len(b) == 2 && b[0] == 'L' && b[1] >= '1' && b[1] <= '5' {
		return int(b[1] - '0')
	}
	return 0
}

// Valid reports whether b is a member of the closed band set.
func (b Band) Valid() bool {
	return b.Level() > 0
}

// Parse normalizes a band token such as "l3" into a Band.
func Parse(s string) (Band, bool) {
	b := Band(strings.ToUpper(strings.TrimSpace(s)))
	return b, b.Valid()
}

// ParseQuery extracts all band tokens mentioned in a query, deduplicated,
// in order of first mention.
func ParseQuery(query string) []Band {
	matches := bandPattern.FindAllString(strings.ToUpper(query), -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[Band]bool, len(matches))
	var bands []Band
	for _, m := range matches {
		b := Band(m)
		if !seen[b] {
			seen[b] = true
			bands = append(bands, b)
		}
	}
	return bands
}

// IsSeniorQuery reports whether a query asks about senior-level staff
// without naming a concrete band. Senior is interpreted as L3 and above.
func IsSeniorQuery(query string) bool {
	q := strings.ToLower(query)
	for _, term := range []string{"senior", "executive", "lead"} {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}

// Senior returns the senior bands, L3 and above.
func Senior() []Band {
	return []Band{L3, L4, L5}
}

// Others returns every band except b, in seniority order.
func Others(b Band) []Band {
	others := make([]Band, 0, len(All)-1)
	for _, o := range All {
		if o != b {
			others = append(others, o)
		}
	}
	return others
}

// Mentions reports whether content mentions the band token, case-insensitively.
func (b Band) Mentions(content string) bool {
	return strings.Contains(strings.ToUpper(content), string(b))
}
