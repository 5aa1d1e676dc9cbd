package analyze

// EstimateTokens gives a rough token count using the ~4 chars/token
// heuristic. Exact tokenization is not required for sizing decisions.
func EstimateTokens(text string) int {
	return len(text) / 4
}
