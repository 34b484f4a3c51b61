package generate

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction sent to the generation service for one
// chunk of source text. The example block uses exactly the grammar
// ParseResponse accepts.
func BuildPrompt(text, tier string, count int) string {
	kind := TierComplex
	if tier == TierSimple {
		kind = TierSimple
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From the following academic text, generate exactly %d %s multiple-choice questions.\n", count, kind)
	b.WriteString("These questions must be 100% based on the text and the correct answers must be accurate.\n")
	b.WriteString("- Simple questions should focus on direct facts from the text.\n")
	b.WriteString("- Complex questions should require critical thinking and deeper understanding.\n")
	b.WriteString("- Include exactly four unique and plausible options.\n")
	b.WriteString("- Ensure the correct answer is explicitly labeled as A, B, C, or D.\n")
	b.WriteString("- Avoid ambiguity and irrelevant information.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n\n")
	b.WriteString("Example Format:\n")
	b.WriteString("Q: What is the main purpose of version control?\n")
	b.WriteString("A) To track and manage changes to files over time.\n")
	b.WriteString("B) To compile code efficiently.\n")
	b.WriteString("C) To secure the code from unauthorized access.\n")
	b.WriteString("D) To automatically fix code errors.\n")
	b.WriteString("Correct Answer: A\n\n")
	b.WriteString("Now, generate the questions accordingly.")
	return b.String()
}
