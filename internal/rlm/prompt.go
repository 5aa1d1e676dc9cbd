package rlm

import (
	"fmt"
	"strings"
)

// NoInfoSentinel is the exact token the oracle is instructed to reply with
// when a section holds nothing relevant to the query.
const NoInfoSentinel = "NO_RELEVANT_INFO"

// SummarizeQuery replaces the original query on recursive pre-summarization
// passes during aggregation.
const SummarizeQuery = "Summarize these findings"

// NoRelevantInfoAnswer is the terminal answer when no chunk produced an
// extraction. It is returned without an oracle call.
const NoRelevantInfoAnswer = "No relevant information found in the provided context for this query."

// Reply budgets per call type.
const (
	ExtractMaxTokens   = 2048
	SynthesisMaxTokens = 4096
)

// BuildChunkPrompt creates the per-section analysis prompt. The section's
// ordinal position and the document's total chunk count anchor any
// citations the model makes later.
func BuildChunkPrompt(index, total int, query, chunkText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are analyzing section %d of %d of a large document.\n\n", index+1, total)
	fmt.Fprintf(&sb, "ORIGINAL QUERY: %s\n\n", query)
	sb.WriteString("DOCUMENT SECTION:\n---\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n---\n\n")
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Extract any information from this section relevant to answering the query\n")
	fmt.Fprintf(&sb, "2. If nothing relevant is found, respond with exactly: %s\n", NoInfoSentinel)
	sb.WriteString("3. Be concise but preserve important details\n")
	sb.WriteString("4. Note any partial information that might be useful combined with other sections\n\n")
	sb.WriteString("YOUR ANALYSIS:")
	return sb.String()
}

// BuildSynthesisPrompt creates the final synthesis prompt over the combined
// labeled findings.
func BuildSynthesisPrompt(combined, query string) string {
	var sb strings.Builder
	sb.WriteString("You analyzed a large document in sections. Here are the relevant findings:\n\n")
	sb.WriteString(combined)
	sb.WriteString("\n\n---\n\n")
	fmt.Fprintf(&sb, "ORIGINAL QUERY: %s\n\n", query)
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Synthesize all findings into a comprehensive answer\n")
	sb.WriteString("2. Resolve any contradictions between sections\n")
	sb.WriteString("3. Cite specific sections when relevant (e.g., \"According to Section 3...\")\n")
	sb.WriteString("4. If the query cannot be fully answered, explain what's missing\n\n")
	sb.WriteString("YOUR FINAL ANSWER:")
	return sb.String()
}
