package enrichment

import (
	"fmt"
	"strings"

	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/textgen"
)

// SearchSummaryRequest asks for a one-line fact about what the user is typing.
func SearchSummaryRequest(term string) textgen.ChatRequest {
	prompt := fmt.Sprintf(`You are a very fast, helpful medical AI. The user just typed "%s" into a medicine search bar.
In EXACTLY 20 words or less, provide a helpful fact, definition, or quick tip about this symptom, generic formula, or medicine brand. Be concise, direct, and safe.`, term)

	return textgen.ChatRequest{
		Messages:    []textgen.Message{{Role: "system", Content: prompt}},
		Temperature: 0.5,
		MaxTokens:   50,
	}
}

// DetailExplanationRequest asks for a plain-language definition of med and a few
// brands sharing its generic formula.
func DetailExplanationRequest(med entities.Medicine) textgen.ChatRequest {
	prompt := fmt.Sprintf(`You are a helpful and safe health assistant.
The user is looking at a medicine card.
Brand: %s
Generic Formula: %s
Dosage/Route: %s
Used for: %s

Your job is to:
1. Provide a very simple, 1-2 sentence definition of what this medicine does for a regular user.
2. Suggest 2-3 popular alternative medicine brands that have the EXACT same generic formula (%s).
3. Always add a short disclaimer to consult a doctor. Keep responses concise, simple, and formatted in Markdown.`,
		med.BrandName, med.GenericFormula, med.Dosage, strings.Join(med.Uses, ", "), med.GenericFormula)

	return textgen.ChatRequest{
		Messages: []textgen.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: fmt.Sprintf("Please explain %s and suggest alternatives.", med.BrandName)},
		},
		Temperature: 0.3,
		MaxTokens:   400,
	}
}
