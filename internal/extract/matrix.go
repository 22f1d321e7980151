package extract

import "strings"

// Indicator pairs that must co-occur for content to count as a matrix.
// The "ban d" variant covers PDF extraction splitting the header word.
var leaveIndicators = [][2]string{
	{"total leave", "earned"},
	{"leave days", "sick"},
	{"casual", "wfh eligibility"},
	{"ban d", "days"},
}

var travelIndicators = [][2]string{
	{"travel", "per diem"},
	{"hotel", "flight"},
	{"domestic", "international"},
	{"travel mode", "approval"},
	{"per diem", "hotel cap"},
	{"flight class", "eligibility"},
	{"travel band", "matrix"},
	{"allowance", "reimbursement"},
	{"business", "economy"},
	{"rs.", "usd"},
	{"cap/night", "approval required"},
}

// IsLeaveMatrix reports whether content looks like the leave
// entitlement matrix.
func IsLeaveMatrix(content string) bool {
	return hasIndicatorPair(content, leaveIndicators)
}

// IsTravelMatrix reports whether content looks like the travel
// entitlement matrix.
func IsTravelMatrix(content string) bool {
	return hasIndicatorPair(content, travelIndicators)
}

func hasIndicatorPair(content string, pairs [][2]string) bool {
	lower := strings.ToLower(content)
	for _, pair := range pairs {
		if strings.Contains(lower, pair[0]) && strings.Contains(lower, pair[1]) {
			return true
		}
	}
	return false
}
