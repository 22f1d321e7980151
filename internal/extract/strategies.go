package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
)

var (
	wfoRangePattern    = regexp.MustCompile(`(?i)(\d+[-–]\d+)\s*/?\s*week`)
	wfoPattern         = regexp.MustCompile(`(?i)(\d+(?:[-–]\d+)?)\s*/?\s*week`)
	numberPattern      = regexp.MustCompile(`\d+`)
	rupeePattern       = regexp.MustCompile(`(?i)rs\.?\s*(\d{1,3}(?:,\d{3})*)`)
	usdPattern         = regexp.MustCompile(`(?i)usd\s*(\d+)`)
	columnGapPattern   = regexp.MustCompile(`\s{3,}`)
	leaveContextTerms  = []string{"band", "total", "leave", "days"}
	travelContextTerms = []string{"band", "travel", "mode", "cap"}
	intlKeywords       = []string{"standard", "permitted", "approval", "director", "vp"}
)

// unlimitedLeave handles the executive row, which reads "Unlimited" where
// the other rows carry day counts.
func unlimitedLeave(content string, b band.Band) *Result {
	if b != band.L5 || !IsLeaveMatrix(content) {
		return nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !b.Mentions(line) || !strings.Contains(strings.ToLower(line), "unlimited") {
			continue
		}

		// The approval clause often wraps onto the next line.
		merged := line
		if i+1 < len(lines) && strings.Contains(lines[i+1], "approval") {
			merged += " " + strings.TrimSpace(lines[i+1])
		}

		wfoMinimum := "0–2/week (optional)"
		if m := wfoRangePattern.FindStringSubmatch(merged); m != nil {
			wfoMinimum = m[1] + "/week (optional)"
		}

		return &Result{Leave: &LeaveRecord{
			Band:       b,
			Unlimited:  true,
			WFH:        WFHFullFlex,
			WFOMinimum: wfoMinimum,
		}}
	}
	return nil
}

// travelRow matches the serialized table row layout emitted at ingestion
// time, the most reliable source.
func travelRow(content string, b band.Band) *Result {
	if !IsTravelMatrix(content) {
		return nil
	}

	pattern := regexp.MustCompile(fmt.Sprintf(
		`ROW \d+: %s \|([^|\n]+)\|([^|\n]+)\|([^|\n]+)\|([^|\n]+)\|([^|\n]+)\|([^|\n]+)\|([^|\n]+)`, b))
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}

	record := &TravelRecord{
		Band:                     b,
		DomesticMode:             strings.TrimSpace(m[1]),
		InternationalEligibility: strings.TrimSpace(m[2]),
		FlightClass:              strings.TrimSpace(m[3]),
		HotelCap:                 strings.TrimSpace(m[4]),
		PerDiemDomestic:          strings.TrimSpace(m[5]),
		PerDiemInternational:     strings.TrimSpace(m[6]),
		ApprovalRequired:         strings.TrimSpace(m[7]),
	}
	if record.Empty() {
		return nil
	}
	return &Result{Travel: record}
}

// travelPipeLine reads any pipe-delimited band line with at least eight
// cells, covering rows that lost their ROW prefix.
func travelPipeLine(content string, b band.Band) *Result {
	if !IsTravelMatrix(content) {
		return nil
	}

	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, string(b)+" |") || !hasDigit(line) {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 8 {
			continue
		}
		record := &TravelRecord{
			Band:                     b,
			DomesticMode:             parts[1],
			InternationalEligibility: parts[2],
			FlightClass:              parts[3],
			HotelCap:                 parts[4],
			PerDiemDomestic:          parts[5],
			PerDiemInternational:     parts[6],
			ApprovalRequired:         parts[7],
		}
		if !record.Empty() {
			return &Result{Travel: record}
		}
	}
	return nil
}

// travelTokens reassembles a band row from whitespace tokens, anchoring
// on the Rs. and USD currency markers. PDF extraction frequently flattens
// table rows into lines like this.
func travelTokens(content string, b band.Band) *Result {
	if !IsTravelMatrix(content) {
		return nil
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !b.Mentions(line) || !hasDigit(line) {
			continue
		}

		// Wrapped cells: pull in up to two continuation lines that carry
		// row vocabulary but no band token of their own.
		full := line
		for offset := 1; offset <= 2 && i+offset < len(lines); offset++ {
			next := strings.TrimSpace(lines[i+offset])
			if next == "" || mentionsAnyBand(next) {
				continue
			}
			if containsAny(strings.ToLower(next), []string{"economy", "business", "justified", "approval"}) {
				full += " " + next
			}
		}

		parts := strings.Fields(full)
		bandIndex := -1
		for j, part := range parts {
			if part == string(b) {
				bandIndex = j
				break
			}
		}
		if bandIndex < 0 {
			continue
		}

		var rsIndices, usdIndices []int
		for j, part := range parts {
			if strings.HasPrefix(part, "Rs.") {
				rsIndices = append(rsIndices, j)
			}
			if strings.HasPrefix(part, "USD") {
				usdIndices = append(usdIndices, j)
			}
		}
		if len(rsIndices) == 0 || len(usdIndices) == 0 {
			continue
		}

		contentParts := parts[bandIndex+1 : rsIndices[0]]

		var domesticMode, international, flightClass string
		if len(contentParts) >= 3 {
			intlIndex := -1
			for j, part := range contentParts {
				if containsFold(intlKeywords, part) {
					intlIndex = j
					break
				}
			}
			if intlIndex >= 0 {
				domesticMode = strings.Join(contentParts[:intlIndex], " ")
				international = contentParts[intlIndex]
				flightClass = strings.Join(contentParts[intlIndex+1:], " ")
			} else {
				domesticMode = strings.Join(contentParts[:2], " ")
				if len(contentParts) > 2 {
					international = contentParts[2]
				}
				if len(contentParts) > 3 {
					flightClass = strings.Join(contentParts[3:], " ")
				}
			}
		} else {
			domesticMode = strings.Join(contentParts, " ")
		}

		record := &TravelRecord{
			Band:                     b,
			DomesticMode:             strings.TrimSpace(domesticMode),
			InternationalEligibility: strings.TrimSpace(international),
			FlightClass:              strings.TrimSpace(flightClass),
			HotelCap:                 currencyPair(parts, rsIndices, 0),
			PerDiemDomestic:          currencyPair(parts, rsIndices, 1),
			PerDiemInternational:     currencyPair(parts, usdIndices, 0),
		}

		approvalStart := len(parts)
		if usdIndices[0]+2 < len(parts) {
			approvalStart = usdIndices[0] + 2
		}
		var approval []string
		for _, part := range parts[approvalStart:] {
			lower := strings.ToLower(part)
			if lower == "economy" || lower == "(justified)" || lower == "business" {
				break
			}
			approval = append(approval, part)
		}
		record.ApprovalRequired = strings.Join(approval, " ")

		if !record.Empty() {
			return &Result{Travel: record}
		}
	}
	return nil
}

// travelColumns aligns a header row against the band row by column
// position, covering matrices that kept their tabular layout.
func travelColumns(content string, b band.Band) *Result {
	if !IsTravelMatrix(content) {
		return nil
	}

	lines := strings.Split(content, "\n")
	headerIndex := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "band") &&
			containsAny(lower, []string{"travel mode", "flight class", "hotel cap", "per diem", "approval"}) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil
	}
	headers := parseMatrixColumns(lines[headerIndex])

	var values []string
	for i := headerIndex + 1; i < len(lines); i++ {
		if b.Mentions(lines[i]) && hasDigit(lines[i]) {
			values = parseMatrixColumns(lines[i])
			break
		}
	}
	if values == nil {
		return nil
	}

	record := &TravelRecord{Band: b}
	for i := 0; i < len(headers) && i < len(values); i++ {
		header := strings.ToLower(headers[i])
		value := strings.TrimSpace(values[i])
		switch {
		case strings.Contains(header, "flight"):
			record.FlightClass = value
		case strings.Contains(header, "travel mode"),
			strings.Contains(header, "domestic") && strings.Contains(header, "mode"):
			record.DomesticMode = value
		case strings.Contains(header, "international") && strings.Contains(header, "eligibility"):
			record.InternationalEligibility = value
		case strings.Contains(header, "hotel") && strings.Contains(header, "cap"):
			record.HotelCap = value
		case strings.Contains(header, "per diem") && strings.Contains(header, "domestic"):
			record.PerDiemDomestic = value
		case strings.Contains(header, "per diem") &&
			(strings.Contains(header, "intl") || strings.Contains(header, "international")):
			record.PerDiemInternational = value
		case strings.Contains(header, "approval") && strings.Contains(header, "required"):
			record.ApprovalRequired = value
		}
	}
	if record.Empty() {
		return nil
	}
	return &Result{Travel: record}
}

// travelCurrency is the loosest travel read: currency amounts pulled
// straight off the band line. First Rs. amount is the hotel cap, second
// the domestic per diem, the USD amount the international per diem.
func travelCurrency(content string, b band.Band) *Result {
	if !IsTravelMatrix(content) {
		return nil
	}

	for _, line := range strings.Split(content, "\n") {
		if !b.Mentions(line) || !hasDigit(line) {
			continue
		}

		record := &TravelRecord{Band: b}
		rsMatches := rupeePattern.FindAllStringSubmatch(line, -1)
		if len(rsMatches) > 0 {
			record.HotelCap = "Rs. " + rsMatches[0][1]
		}
		if len(rsMatches) > 1 {
			record.PerDiemDomestic = "Rs. " + rsMatches[1][1]
		}
		if m := usdPattern.FindStringSubmatch(line); m != nil {
			record.PerDiemInternational = "USD " + m[1]
		}
		if !record.Empty() {
			return &Result{Travel: record}
		}
	}
	return nil
}

// leaveNumeric reads the day counts that follow the band token, cutting
// the line at the WFH column so its numbers stay out of the leave counts.
func leaveNumeric(content string, b band.Band) *Result {
	if !IsLeaveMatrix(content) {
		return nil
	}

	for _, line := range strings.Split(content, "\n") {
		if !b.Mentions(line) {
			continue
		}

		upper := strings.ToUpper(line)
		idx := strings.Index(upper, string(b))
		if idx < 0 {
			continue
		}
		numbersPart := upper[idx+len(b):]
		for _, cut := range []string{"YES", "LIMITED", "PARTIAL"} {
			if cutIdx := strings.Index(numbersPart, cut); cutIdx >= 0 {
				numbersPart = numbersPart[:cutIdx]
			}
		}

		numbers := numberPattern.FindAllString(numbersPart, -1)
		if len(numbers) < 4 {
			continue
		}

		totalDays, err1 := strconv.Atoi(numbers[0])
		earned, err2 := strconv.Atoi(numbers[1])
		sick, err3 := strconv.Atoi(numbers[2])
		casual, err4 := strconv.Atoi(numbers[3])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		lower := strings.ToLower(line)
		wfh := WFHUnknown
		switch {
		case strings.Contains(lower, "yes"):
			wfh = WFHFull
		case strings.Contains(lower, "partial"):
			wfh = WFHPartial
		case strings.Contains(lower, "limited"):
			wfh = WFHLimited
		}

		wfoMinimum := ""
		if m := wfoPattern.FindStringSubmatch(line); m != nil {
			wfoMinimum = m[1] + "/week"
		}

		return &Result{Leave: &LeaveRecord{
			Band:        b,
			TotalDays:   totalDays,
			EarnedLeave: earned,
			SickLeave:   sick,
			CasualLeave: casual,
			WFH:         wfh,
			WFOMinimum:  wfoMinimum,
		}}
	}
	return nil
}

// lineEcho is the last resort: the band's raw line, with the header line
// above it when that line reads like matrix context. The caller renders
// it verbatim so found policy text is never lost.
func lineEcho(content string, b band.Band) *Result {
	lines := strings.Split(content, "\n")
	contextTerms := leaveContextTerms
	if IsTravelMatrix(content) {
		contextTerms = travelContextTerms
	}

	for i, line := range lines {
		if !b.Mentions(line) || !hasDigit(line) {
			continue
		}
		note := strings.TrimSpace(line)
		if i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if containsAny(strings.ToLower(prev), contextTerms) {
				note = prev + "\n" + note
			}
		}
		return &Result{Note: note}
	}

	for _, line := range lines {
		if b.Mentions(line) {
			return &Result{Note: strings.TrimSpace(line)}
		}
	}
	return nil
}

func parseMatrixColumns(line string) []string {
	split := func(parts []string) []string {
		var columns []string
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				columns = append(columns, trimmed)
			}
		}
		return columns
	}

	if strings.Contains(line, "|") {
		return split(strings.Split(line, "|"))
	}
	if columns := split(columnGapPattern.Split(strings.TrimSpace(line), -1)); len(columns) > 1 {
		return columns
	}
	if strings.Contains(line, "\t") {
		return split(strings.Split(line, "\t"))
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		return []string{trimmed}
	}
	return nil
}

func currencyPair(parts []string, indices []int, n int) string {
	if n >= len(indices) || indices[n]+1 >= len(parts) {
		return ""
	}
	return parts[indices[n]] + " " + parts[indices[n]+1]
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func containsFold(terms []string, s string) bool {
	for _, term := range terms {
		if strings.EqualFold(term, s) {
			return true
		}
	}
	return false
}

func mentionsAnyBand(s string) bool {
	for _, b := range band.All {
		if strings.Contains(s, string(b)) {
			return true
		}
	}
	return false
}
