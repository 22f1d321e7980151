package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	"github.com/empuraan01/fenmoai-hrletter/internal/document"
	"github.com/empuraan01/fenmoai-hrletter/internal/extract"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
	"github.com/empuraan01/fenmoai-hrletter/internal/retrieval"
)

// PolicyCategory groups the retrieved chunks that feed one section of
// the letter prompt.
type PolicyCategory string

const (
	CategoryLeavePolicy           PolicyCategory = "leave_policy"
	CategoryTravelPolicy          PolicyCategory = "travel_policy"
	CategoryWorkArrangements      PolicyCategory = "work_arrangements"
	CategoryInfrastructureSupport PolicyCategory = "infrastructure_support"
)

// categoryOrder fixes the section order of the assembled context.
var categoryOrder = []PolicyCategory{
	CategoryLeavePolicy,
	CategoryTravelPolicy,
	CategoryWorkArrangements,
	CategoryInfrastructureSupport,
}

var categoryQueries = map[PolicyCategory]string{
	CategoryLeavePolicy:           "leave entitlement %s earned leave sick leave casual leave matrix",
	CategoryTravelPolicy:          "travel allowance per diem %s flight hotel reimbursement matrix",
	CategoryWorkArrangements:      "work from home WFH WFO %s remote work flexible eligibility",
	CategoryInfrastructureSupport: "WFH setup grant internet stipend laptop device policy %s",
}

const excerptLength = 500

// ContextAssembler turns band-aware search results into the policy
// context block of the letter prompt, substituting structured matrix
// breakdowns for raw table text wherever extraction succeeds.
type ContextAssembler struct {
	searcher  *retrieval.PolicySearcher
	extractor *extract.Extractor
	logger    *zap.Logger
}

func NewContextAssembler(searcher *retrieval.PolicySearcher, extractor *extract.Extractor) *ContextAssembler {
	return &ContextAssembler{
		searcher:  searcher,
		extractor: extractor,
		logger:    logger.GetLogger(),
	}
}

// RelevantPolicies runs one band search per policy category. Categories
// with no hits are left out of the map.
func (a *ContextAssembler) RelevantPolicies(ctx context.Context, b band.Band) (map[PolicyCategory][]retrieval.Result, error) {
	categories := []string{
		string(document.CategoryHRPolicy),
		string(document.CategoryTravelPolicy),
	}

	policies := make(map[PolicyCategory][]retrieval.Result)
	for _, category := range categoryOrder {
		query := fmt.Sprintf(categoryQueries[category], b)
		results, err := a.searcher.BandSearch(ctx, query, b, 4, categories, 0.05)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			policies[category] = results
			a.logger.Debug("found policy chunks",
				zap.String("category", string(category)),
				zap.String("band", string(b)),
				zap.Int("count", len(results)))
		}
	}
	return policies, nil
}

// BuildPolicyContext renders the retrieved policies into prompt text.
// Matrix chunks are replaced by the band's parsed row when extraction
// succeeds; everything else becomes a relevance-tagged excerpt.
func (a *ContextAssembler) BuildPolicyContext(policies map[PolicyCategory][]retrieval.Result, b band.Band) string {
	if len(policies) == 0 {
		return "No specific policies found."
	}

	var parts []string
	for _, category := range categoryOrder {
		results, ok := policies[category]
		if !ok {
			continue
		}

		heading := strings.ToUpper(strings.ReplaceAll(string(category), "_", " "))
		parts = append(parts, fmt.Sprintf("\n**%s:**", heading))

		for i, result := range results {
			if rendered := a.renderMatrix(category, result.Content, b); rendered != "" {
				parts = append(parts, fmt.Sprintf("\n%d. (Relevance: %.2f)", i+1, result.Similarity))
				parts = append(parts, rendered)
				continue
			}

			excerpt := result.Content
			if len(excerpt) > excerptLength {
				excerpt = excerpt[:excerptLength] + "..."
			}
			parts = append(parts, fmt.Sprintf("\n%d. (Relevance: %.2f)\n%s", i+1, result.Similarity, excerpt))
		}
	}

	if len(parts) == 0 {
		return "No specific policies found."
	}
	return strings.Join(parts, "\n")
}

func (a *ContextAssembler) renderMatrix(category PolicyCategory, content string, b band.Band) string {
	switch category {
	case CategoryTravelPolicy:
		if !extract.IsTravelMatrix(content) {
			return ""
		}
	case CategoryLeavePolicy:
		if !extract.IsLeaveMatrix(content) {
			return ""
		}
	default:
		return ""
	}

	result := a.extractor.ExtractFromContent(content, b)
	if result == nil {
		return ""
	}
	switch {
	case result.Leave != nil:
		return RenderLeaveBreakdown(result.Leave)
	case result.Travel != nil:
		return RenderTravelBreakdown(result.Travel)
	case result.Note != "":
		return fmt.Sprintf("**%s Policy Details:**\n%s", b, result.Note)
	}
	return ""
}

// RenderLeaveBreakdown formats a leave record in a fixed field order.
func RenderLeaveBreakdown(rec *extract.LeaveRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s Leave Entitlement Breakdown:**\n\n", rec.Band)
	b.WriteString("Leave Days Allocation:\n")
	if rec.Unlimited {
		b.WriteString("- Total Annual Leave: Unlimited (with approval)\n")
		b.WriteString("- Earned Leave (EL): Not applicable\n")
		b.WriteString("- Sick Leave (SL): Not applicable\n")
		b.WriteString("- Casual Leave (CL): Not applicable\n")
	} else {
		fmt.Fprintf(&b, "- Total Annual Leave: %d days\n", rec.TotalDays)
		fmt.Fprintf(&b, "- Earned Leave (EL): %d days\n", rec.EarnedLeave)
		fmt.Fprintf(&b, "- Sick Leave (SL): %d days\n", rec.SickLeave)
		fmt.Fprintf(&b, "- Casual Leave (CL): %d days\n", rec.CasualLeave)
	}
	b.WriteString("\nWork Arrangements:\n")
	fmt.Fprintf(&b, "- WFH Eligibility: %s\n", wfhLabel(rec.WFH))
	wfo := rec.WFOMinimum
	if wfo == "" {
		wfo = "Not specified"
	}
	fmt.Fprintf(&b, "- WFO Minimum: %s", wfo)
	return b.String()
}

// RenderTravelBreakdown formats a travel record in a fixed field order,
// leaving out fields the source row did not carry.
func RenderTravelBreakdown(rec *extract.TravelRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s Travel Policy Breakdown:**\n\n", rec.Band)
	b.WriteString("Travel Entitlements:\n")

	fields := []struct {
		label string
		value string
	}{
		{"Domestic Travel", rec.DomesticMode},
		{"International Travel", rec.InternationalEligibility},
		{"Flight Class", rec.FlightClass},
		{"Hotel Cap", rec.HotelCap},
		{"Per Diem (Domestic)", rec.PerDiemDomestic},
		{"Per Diem (International)", rec.PerDiemInternational},
		{"Approval Required", rec.ApprovalRequired},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func wfhLabel(w extract.WFHEligibility) string {
	switch w {
	case extract.WFHFull:
		return "Yes (Full WFH available)"
	case extract.WFHPartial:
		return "Partial (Hybrid work)"
	case extract.WFHLimited:
		return "Limited"
	case extract.WFHFullFlex:
		return "Full Flex"
	default:
		return "Unknown"
	}
}
