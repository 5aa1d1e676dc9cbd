package chunk

import (
	"regexp"
	"strings"
)

// Strategy names a splitting algorithm. One strategy is chosen per run and
// never mixed within a run.
type Strategy string

const (
	StrategyDocumentSeparator Strategy = "document_separator"
	StrategyMarkdownHeaders   Strategy = "markdown_headers"
	StrategyLineCount         Strategy = "line_count"
	StrategyCharacterCount    Strategy = "character_count"
)

// Detection thresholds for DetectStrategy.
const (
	// SeparatorMinCount is the number of horizontal-rule separators content
	// must exceed before separator splitting is considered.
	SeparatorMinCount = 5
	// HeaderMinCount is the number of markdown headers content must exceed
	// before header splitting is considered.
	HeaderMinCount = 10
	// LineMinCount is the number of lines content must exceed before line
	// grouping is considered.
	LineMinCount = 100
	// AvgLineMax is the average line length, in characters, above which
	// content no longer looks like structured line-oriented data.
	AvgLineMax = 200
	// OversizeFactor bounds acceptable segment size relative to the target
	// chunk size for the structure-aware strategies.
	OversizeFactor = 2
)

// autoSeparator is the split token used when document separators are
// detected. It deliberately omits the trailing newline so both "---" and
// longer dash runs break the document.
const autoSeparator = "\n---"

var separatorRe = regexp.MustCompile(`\n---+\n|\n===+\n`)

// DetectStrategy inspects content for surface structure and picks the
// splitting strategy for it. Conditions are evaluated in fixed priority
// order and the first match wins; character_count is the universal
// fallback.
func DetectStrategy(content string, targetSize int) Strategy {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	totalChars := len(content)

	if sepCount := len(separatorRe.FindAllStringIndex(content, -1)); sepCount > SeparatorMinCount {
		if totalChars/sepCount < targetSize*OversizeFactor {
			return StrategyDocumentSeparator
		}
	}

	if CountHeadings(content) > HeaderMinCount {
		if maxSegmentLen(ByHeaders(content)) < targetSize*OversizeFactor {
			return StrategyMarkdownHeaders
		}
	}

	totalLines := strings.Count(content, "\n") + 1
	if totalLines > LineMinCount && totalChars/totalLines < AvgLineMax {
		return StrategyLineCount
	}

	return StrategyCharacterCount
}

// Auto picks a strategy for content and splits with it, returning the
// chunks and the strategy used.
func Auto(content string, targetSize int) ([]string, Strategy) {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	strategy := DetectStrategy(content, targetSize)
	return SplitByStrategy(content, strategy, targetSize, DefaultOverlap), strategy
}

// SplitByStrategy splits content with a specific strategy. chunkSize and
// overlap govern the character strategy; chunkSize also derives the group
// size for the line strategy. An unknown strategy falls back to character
// windows.
func SplitByStrategy(content string, strategy Strategy, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	switch strategy {
	case StrategyDocumentSeparator:
		return BySeparator(content, autoSeparator)
	case StrategyMarkdownHeaders:
		return ByHeaders(content)
	case StrategyLineCount:
		linesPerChunk := chunkSize / 100
		if linesPerChunk < 100 {
			linesPerChunk = 100
		}
		return ByLines(content, linesPerChunk)
	default:
		return ByChars(content, chunkSize, overlap)
	}
}

func maxSegmentLen(segments []string) int {
	max := 0
	for _, s := range segments {
		if len(s) > max {
			max = len(s)
		}
	}
	return max
}
