package extract

import "github.com/empuraan01/fenmoai-hrletter/internal/band"

// WFHEligibility is the work-from-home tier read out of a leave matrix.
type WFHEligibility string

const (
	WFHUnknown  WFHEligibility = "unknown"
	WFHLimited  WFHEligibility = "limited"
	WFHPartial  WFHEligibility = "partial"
	WFHFull     WFHEligibility = "full"
	WFHFullFlex WFHEligibility = "full_flex"
)

// LeaveRecord is one band's row of the leave entitlement matrix.
// Unlimited marks executive rows where the day counts do not apply.
type LeaveRecord struct {
	Band        band.Band
	Unlimited   bool
	TotalDays   int
	EarnedLeave int
	SickLeave   int
	CasualLeave int
	WFH         WFHEligibility
	WFOMinimum  string
}

func (r *LeaveRecord) Empty() bool {
	return !r.Unlimited &&
		r.TotalDays == 0 && r.EarnedLeave == 0 && r.SickLeave == 0 && r.CasualLeave == 0 &&
		(r.WFH == "" || r.WFH == WFHUnknown) && r.WFOMinimum == ""
}

// TravelRecord is one band's row of the travel entitlement matrix.
// Empty string means the source row did not carry the field.
type TravelRecord struct {
	Band                     band.Band
	DomesticMode             string
	InternationalEligibility string
	FlightClass              string
	HotelCap                 string
	PerDiemDomestic          string
	PerDiemInternational     string
	ApprovalRequired         string
}

func (r *TravelRecord) Empty() bool {
	return r.DomesticMode == "" && r.InternationalEligibility == "" && r.FlightClass == "" &&
		r.HotelCap == "" && r.PerDiemDomestic == "" && r.PerDiemInternational == "" &&
		r.ApprovalRequired == ""
}

// Result is the outcome of one extraction attempt. Note carries the raw
// matrix line when the band was found but its row could not be parsed,
// so found policy text is never silently dropped.
type Result struct {
	Leave  *LeaveRecord
	Travel *TravelRecord
	Note   string
}

// Structured reports whether the extraction produced a parsed record
// rather than a raw line echo.
func (r *Result) Structured() bool {
	return r.Leave != nil || r.Travel != nil
}
