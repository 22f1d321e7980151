package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
)

const travelTableContent = `=== TABLE 1 ON PAGE 3 ===
HEADERS: Band | Domestic Travel Mode | International Eligibility | Flight Class | Hotel Cap/Night | Per Diem Domestic | Per Diem Intl | Approval Required
ROW 1: L1 | 3-Tier AC Train | Not Permitted | Economy | Rs. 2,500 | Rs. 800 | USD 30 | Manager
ROW 2: L2 | Flights + AC Train | Permitted | Economy | Rs. 4,000 | Rs. 1,500 | USD 50 | Manager
ROW 2 DETAILS: BAND |L2| DOMESTIC TRAVEL MODE |Flights + AC Train| INTERNATIONAL ELIGIBILITY |Permitted| FLIGHT CLASS |Economy| HOTEL CAP/NIGHT |Rs. 4,000| PER DIEM DOMESTIC |Rs. 1,500| PER DIEM INTL |USD 50| APPROVAL REQUIRED |Manager|
=== END TABLE ===`

const leaveMatrixContent = `Leave Entitlement Matrix
Band Total Leave Days Earned Leave Sick Leave Casual Leave WFH Eligibility WFO Minimum
L2 22 10 7 5 Limited 4/week
L3 25 10 8 7 Yes 2/week
L5 Unlimited (with approval) Full Flex 0-2 /week`

func TestMatrixDetection(t *testing.T) {
	assert.True(t, IsTravelMatrix(travelTableContent))
	assert.False(t, IsLeaveMatrix(travelTableContent))

	assert.True(t, IsLeaveMatrix(leaveMatrixContent))
	assert.False(t, IsTravelMatrix(leaveMatrixContent))

	assert.False(t, IsLeaveMatrix("plain prose about onboarding"))
	assert.False(t, IsTravelMatrix("plain prose about onboarding"))
}

func TestExtractTravelRowFromSerializedTable(t *testing.T) {
	e := NewExtractor()
	result := e.ExtractFromContent(travelTableContent, band.L2)
	require.NotNil(t, result)
	require.NotNil(t, result.Travel)

	rec := result.Travel
	assert.Equal(t, band.L2, rec.Band)
	assert.Equal(t, "Flights + AC Train", rec.DomesticMode)
	assert.Equal(t, "Permitted", rec.InternationalEligibility)
	assert.Equal(t, "Economy", rec.FlightClass)
	assert.Equal(t, "Rs. 4,000", rec.HotelCap)
	assert.Equal(t, "Rs. 1,500", rec.PerDiemDomestic)
	assert.Equal(t, "USD 50", rec.PerDiemInternational)
	assert.Equal(t, "Manager", rec.ApprovalRequired)
}

func TestExtractTravelTokens(t *testing.T) {
	content := `Travel entitlements with per diem limits per band
Band Travel Mode International Flight Hotel Per Diem
L1 3-Tier AC Train Standard Economy Rs. 2,500 Rs. 800 USD 30 Manager`

	e := NewExtractor()
	result := e.ExtractFromContent(content, band.L1)
	require.NotNil(t, result)
	require.NotNil(t, result.Travel)

	rec := result.Travel
	assert.Equal(t, "3-Tier AC Train", rec.DomesticMode)
	assert.Equal(t, "Standard", rec.InternationalEligibility)
	assert.Equal(t, "Economy", rec.FlightClass)
	assert.Equal(t, "Rs. 2,500", rec.HotelCap)
	assert.Equal(t, "Rs. 800", rec.PerDiemDomestic)
	assert.Equal(t, "USD 30", rec.PerDiemInternational)
	assert.Equal(t, "Manager", rec.ApprovalRequired)
}

func TestExtractLeaveNumeric(t *testing.T) {
	e := NewExtractor()
	result := e.ExtractFromContent(leaveMatrixContent, band.L3)
	require.NotNil(t, result)
	require.NotNil(t, result.Leave)

	rec := result.Leave
	assert.False(t, rec.Unlimited)
	assert.Equal(t, 25, rec.TotalDays)
	assert.Equal(t, 10, rec.EarnedLeave)
	assert.Equal(t, 8, rec.SickLeave)
	assert.Equal(t, 7, rec.CasualLeave)
	assert.Equal(t, WFHFull, rec.WFH)
	assert.Equal(t, "2/week", rec.WFOMinimum)
}

func TestExtractLeaveNumericLimitedWFH(t *testing.T) {
	e := NewExtractor()
	result := e.ExtractFromContent(leaveMatrixContent, band.L2)
	require.NotNil(t, result)
	require.NotNil(t, result.Leave)

	rec := result.Leave
	assert.Equal(t, 22, rec.TotalDays)
	assert.Equal(t, WFHLimited, rec.WFH)
	assert.Equal(t, "4/week", rec.WFOMinimum)
}

func TestExtractUnlimitedExecutiveRow(t *testing.T) {
	e := NewExtractor()
	result := e.ExtractFromContent(leaveMatrixContent, band.L5)
	require.NotNil(t, result)
	require.NotNil(t, result.Leave)

	rec := result.Leave
	assert.True(t, rec.Unlimited)
	assert.Equal(t, WFHFullFlex, rec.WFH)
	assert.Equal(t, "0-2/week (optional)", rec.WFOMinimum)
	assert.Zero(t, rec.TotalDays)
}

func TestExtractEchoFallbackNeverLosesFoundText(t *testing.T) {
	// A band row too short to parse still comes back as a note.
	content := `Leave Days Summary with sick leave totals
Band Total Leave Days
L2 22 10`

	e := NewExtractor()
	result := e.ExtractFromContent(content, band.L2)
	require.NotNil(t, result)
	assert.False(t, result.Structured())
	assert.Contains(t, result.Note, "L2 22 10")
	assert.Contains(t, result.Note, "Band Total Leave Days")
}

func TestExtractMissingBandReturnsNil(t *testing.T) {
	e := NewExtractor()
	assert.Nil(t, e.ExtractFromContent(leaveMatrixContent, band.L4))
	assert.Nil(t, e.ExtractFromContent("no matrices here", band.L2))
}

func TestExtractIsIdempotent(t *testing.T) {
	e := NewExtractor()
	first := e.ExtractFromContent(travelTableContent, band.L2)
	second := e.ExtractFromContent(travelTableContent, band.L2)
	assert.Equal(t, first, second)
}

func TestExtractBandRecordPrefersStructured(t *testing.T) {
	echoOnly := `Leave Days Summary with sick leave totals
L3 25 10`

	e := NewExtractor()
	results := []retrieval.Result{
		{Content: echoOnly},
		{Content: leaveMatrixContent},
	}

	// The second chunk parses fully; it must beat the earlier echo.
	result := e.ExtractBandRecord(results, band.L3)
	require.NotNil(t, result)
	assert.True(t, result.Structured())
	assert.Equal(t, 25, result.Leave.TotalDays)
}

func TestExtractBandRecordNoMatch(t *testing.T) {
	e := NewExtractor()
	results := []retrieval.Result{{Content: "nothing relevant"}}
	assert.Nil(t, e.ExtractBandRecord(results, band.L1))
}

func TestLeaveRecordEmpty(t *testing.T) {
	assert.True(t, (&LeaveRecord{Band: band.L1, WFH: WFHUnknown}).Empty())
	assert.False(t, (&LeaveRecord{Band: band.L5, Unlimited: true}).Empty())
	assert.False(t, (&LeaveRecord{TotalDays: 20}).Empty())
}

func TestTravelRecordEmpty(t *testing.T) {
	assert.True(t, (&TravelRecord{Band: band.L2}).Empty())
	assert.False(t, (&TravelRecord{HotelCap: "Rs. 4,000"}).Empty())
}
