package oracle

// Model identifiers and call limits.
const (
	// ModelDefault is the standard model for extraction and synthesis.
	ModelDefault = "claude-sonnet-4-5-20250929"
	// ModelFast trades answer quality for speed and cost.
	ModelFast = "claude-haiku-4-5-20251001"

	// DefaultMaxTokens bounds a reply when the request does not say.
	DefaultMaxTokens = 4096
)
