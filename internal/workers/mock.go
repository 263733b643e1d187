package workers

import (
	"strings"

	"github.com/ericksa/legalyze/internal/analysis"
)

// Sample responses served when no model provider is configured. They
// describe the built-in sample rental agreement.

const mockSimplified = `**SIMPLIFIED SUMMARY**

**Key Points:**
• Monthly rent: ₹25,000 due on 1st of each month
• Security deposit: ₹75,000 (refundable at lease end)
• Lease duration: 12 months starting January 1, 2024
• Late payment fee: ₹500 per day after 5-day grace period
• Early exit penalty: 2 months rent if leaving before 6 months

**Important Dates:**
• Lease starts: January 1, 2024
• No-penalty exit possible after: July 1, 2024
• Rent increase: 10% after first year

**Your Responsibilities:**
• Pay rent by 1st of each month
• Handle minor repairs under ₹5,000
• Get approval for pets or subletting
• Allow property inspections with 24-hour notice

**Financial Impact:**
• Total annual cost: ₹3,00,000 (rent) + ₹75,000 (deposit)
• Potential late fees: Up to ₹15,000 per month
• Early exit cost: ₹50,000 (if within first 6 months)`

func mockRedFlags() []analysis.RedFlag {
	return []analysis.RedFlag{
		{
			Clause:      "Monthly rent: ₹25,000 due on the 1st of each month",
			Risk:        analysis.RiskSafe,
			Explanation: "Standard rent payment terms with clear due date. This is normal and reasonable.",
		},
		{
			Clause:      "Late fee: ₹500 per day after 5 days grace period",
			Risk:        analysis.RiskModerate,
			Explanation: "Daily late fees can accumulate quickly (₹15,000/month). This is higher than typical market rates.",
		},
		{
			Clause:      "Security deposit: ₹75,000 (3 months rent)",
			Risk:        analysis.RiskModerate,
			Explanation: "Three months security deposit is above average. Standard is usually 1-2 months rent.",
		},
		{
			Clause:      "Early termination penalty: 2 months rent if terminated before 6 months",
			Risk:        analysis.RiskDangerous,
			Explanation: "₹50,000 penalty for early exit is very high. Consider negotiating a graduated penalty structure.",
		},
		{
			Clause:      "Rent increase: 10% annually after first year",
			Risk:        analysis.RiskDangerous,
			Explanation: "10% annual increase is above market inflation. This could significantly impact your budget over time.",
		},
		{
			Clause:      "Tenant responsible for minor repairs under ₹5,000",
			Risk:        analysis.RiskModerate,
			Explanation: "₹5,000 threshold is reasonable, but ensure 'minor repairs' are clearly defined to avoid disputes.",
		},
	}
}

const (
	mockRiskAnswer      = "Based on the rental agreement, the main risks include: high daily late fees (₹500/day), significant early termination penalty (₹60,000), annual rent increases of 15%, and tenant responsibility for repairs up to ₹10,000."
	mockTerminateAnswer = "You can terminate this contract early, but there are penalties: 3 months notice is required, and if you terminate within the first 12 months, you must pay a penalty of ₹60,000. After 18 months (lock-in period), you can exit with just the 3 months notice."
	mockFinancialAnswer = "Your financial obligations include: Monthly rent of ₹30,000, security deposit of ₹90,000, society maintenance charges of ₹2,500/month, electricity and water bills, potential repair costs up to ₹10,000, and possible parking fees of ₹3,000/month for a second vehicle."
	mockDefaultAnswer   = "I can help you understand any aspect of your legal document. Please ask specific questions about clauses, terms, risks, or obligations."
)

// mockAnswer routes a question by keyword. Earlier rules win.
func mockAnswer(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "risk", "danger"):
		return mockRiskAnswer
	case containsAny(q, "terminate", "exit", "leave"):
		return mockTerminateAnswer
	case containsAny(q, "financial", "money", "cost", "pay"):
		return mockFinancialAnswer
	default:
		return mockDefaultAnswer
	}
}

var mockImprovements = strings.NewReplacer(
	"₹500 per day after 5 days grace period", "₹200 per day after 7 days grace period",
	"15% annually after first year", "8% annually after first year, capped at market rates",
	"penalty of ₹60,000 if terminated within first 12 months", "graduated penalty: ₹30,000 if terminated within 6 months, ₹15,000 if terminated within 12 months",
)

func mockImprove(text string) string {
	return mockImprovements.Replace(text)
}

func mockSuggestions() []analysis.Suggestion {
	return []analysis.Suggestion{
		{Title: "Reduce Late Payment Penalty", Description: "The current ₹500/day late fee is excessive. Industry standard is ₹100-200/day."},
		{Title: "Add Grace Period for Rent Increase", Description: "15% annual increase is high. Suggest capping at 8% or market rate, whichever is lower."},
		{Title: "Clarify Repair Responsibilities", Description: "Define 'minor repairs' more clearly to avoid disputes about the ₹10,000 threshold."},
		{Title: "Add Tenant Protection Clause", Description: "Include protection against arbitrary eviction and ensure proper notice periods."},
	}
}

var redFlagFallback = analysis.RedFlag{
	Clause:      "Unable to parse contract clauses",
	Risk:        analysis.RiskModerate,
	Explanation: "There was an issue analyzing your contract. Please try uploading again or contact support.",
}

var suggestionFallback = analysis.Suggestion{
	Title:       "Review Contract Terms",
	Description: "There was an issue analyzing your contract. Please try again or contact support.",
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
