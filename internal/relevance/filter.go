package relevance

import (
	"regexp"
	"strings"
)

// Selected is a retained chunk together with its position in the original
// chunk sequence. Downstream citations always reference this original
// index, never a position within the filtered subset.
type Selected struct {
	Index int
	Text  string
}

// MinKeepFraction is the safety floor for filtering: a keyword match set
// smaller than this fraction of the chunk count is treated as over-pruned
// and discarded in favor of the full set.
const MinKeepFraction = 0.1

var wordRe = regexp.MustCompile(`\b\w{4,}\b`)

// stopWords are query tokens too generic to discriminate between chunks.
var stopWords = map[string]struct{}{
	"what": {}, "when": {}, "where": {}, "which": {}, "about": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"does": {}, "find": {}, "list": {}, "show": {},
}

// Keywords derives filter keywords from a free-text query: tokens of four
// or more word characters, lower-cased, stop words removed, first
// occurrence order kept.
func Keywords(query string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if _, ok := stopWords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}

// Filter returns the chunks likely relevant to the query, each carrying its
// original index. When keywords is nil they are derived from the query; an
// empty keyword set makes filtering impossible and every chunk is returned.
// When matching would keep fewer than MinKeepFraction of the chunks the
// match result is discarded and every chunk is returned instead, so a
// query/vocabulary mismatch cannot silently discard the document.
func Filter(chunks []string, query string, keywords []string) []Selected {
	if keywords == nil {
		keywords = Keywords(query)
	}
	if len(keywords) == 0 {
		return allChunks(chunks)
	}

	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	pattern, err := regexp.Compile("(?i)" + strings.Join(quoted, "|"))
	if err != nil {
		return allChunks(chunks)
	}

	var relevant []Selected
	for i, c := range chunks {
		if pattern.MatchString(c) {
			relevant = append(relevant, Selected{Index: i, Text: c})
		}
	}

	if float64(len(relevant)) < float64(len(chunks))*MinKeepFraction {
		return allChunks(chunks)
	}
	return relevant
}

// All returns every chunk paired with its original index, unfiltered.
func All(chunks []string) []Selected {
	return allChunks(chunks)
}

func allChunks(chunks []string) []Selected {
	out := make([]Selected, len(chunks))
	for i, c := range chunks {
		out[i] = Selected{Index: i, Text: c}
	}
	return out
}
