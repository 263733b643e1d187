package workers

import (
	"fmt"
	"strings"

	"github.com/ericksa/legalyze/internal/analysis"
)

const (
	simplifySystem    = "You are a legal document simplifier. You turn legal documents into clear, easy-to-understand summaries."
	redFlagsSystem    = "You are a legal expert analyzing a contract for potential risks."
	qaSystem          = "You are a helpful legal assistant. You answer questions about the user's legal document clearly and accurately."
	improveSystem     = "You are a legal expert helping to improve a contract so it is fair and balanced for both parties."
	suggestionsSystem = "You are a legal expert analyzing a contract and proposing specific improvements."
)

func simplifyPrompt(text string) string {
	return fmt.Sprintf(`Take this legal document and create a clear, easy-to-understand summary.

Document to analyze:
%s

Please provide a simplified summary with:
1. Key points in bullet format
2. Important dates and deadlines
3. Financial obligations and costs
4. Rights and responsibilities
5. Potential risks or penalties

Format the response in clear sections with bullet points. Use simple language that anyone can understand.`, text)
}

func redFlagsPrompt(text string) string {
	return fmt.Sprintf(`Analyze this document and identify clauses with their risk levels.

Document to analyze:
%s

For each important clause, determine:
- The specific clause text
- Risk level: "safe", "moderate", or "dangerous"
- Clear explanation of why it's risky and the potential impact

Return your response as a valid JSON array with objects containing:
{"clause": "exact clause text", "risk": "safe/moderate/dangerous", "explanation": "detailed explanation"}

Focus on:
- Payment terms and penalties
- Termination clauses
- Liability and responsibility assignments
- Unusual or unfavorable terms
- Hidden costs or fees

Return ONLY the JSON array, no other text.`, text)
}

func qaPrompt(text, question string, history []analysis.ChatTurn) string {
	var b strings.Builder
	b.WriteString("Document content:\n")
	b.WriteString(text)
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nPrevious conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", turn.Question, turn.Answer)
		}
	}

	fmt.Fprintf(&b, "\nUser's question: %s\n", question)
	b.WriteString(`
Please provide a clear, helpful answer that:
1. Directly addresses the user's question
2. References specific parts of the document when relevant
3. Explains legal terms in simple language
4. Highlights any important implications or risks
5. Suggests next steps if appropriate

Keep your answer concise but comprehensive. Use bullet points when listing multiple items.`)
	return b.String()
}

func improvePrompt(text string) string {
	return fmt.Sprintf(`Review this contract and make it more fair and balanced for both parties.

Original contract:
%s

Please provide an improved version that:
1. Reduces unfair penalties and fees
2. Adds more reasonable terms
3. Clarifies ambiguous language
4. Balances rights and responsibilities
5. Includes standard protective clauses

Return the complete improved contract text, maintaining the same structure but with better terms.`, text)
}

func suggestionsPrompt(text string) string {
	return fmt.Sprintf(`Provide specific improvement suggestions for this contract.

Contract text:
%s

Analyze the contract and provide 3-5 specific suggestions for improvement. For each suggestion, provide:
- A clear title describing the improvement
- A detailed description explaining why this change is beneficial
- The impact on fairness and risk

Focus on:
1. Reducing unfair penalties
2. Balancing power between parties
3. Clarifying ambiguous terms
4. Adding protective clauses
5. Improving financial terms

Return your response as a valid JSON array with objects containing:
{"title": "suggestion title", "description": "detailed explanation"}

Return ONLY the JSON array, no other text.`, text)
}
