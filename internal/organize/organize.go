// Package organize batch-analyzes research papers and sorts them into
// practicality categories. Each PDF is summarized by the oracle and filed
// as useful, meaningful, or impractical; papers the oracle cannot judge
// land in a review bucket.
package organize

// Category is a practicality verdict for one paper.
type Category string

const (
	CategoryUseful      Category = "USEFUL"
	CategoryMeaningful  Category = "MEANINGFUL"
	CategoryImpractical Category = "IMPRACTICAL"
	CategoryUnknown     Category = "UNKNOWN"
)

// CategoryInfo describes one category: the prompt description, the folder
// papers are filed under, and the marker used in reports.
type CategoryInfo struct {
	Description string
	Folder      string
	Marker      string
	Criteria    []string
}

// Categories holds the three judgeable categories. CategoryUnknown is not
// listed; it is the fallback for papers that failed extraction or analysis
// and files under ReviewFolder.
var Categories = map[Category]CategoryInfo{
	CategoryUseful: {
		Description: "Practical, applicable now or in the near term (< 1 year)",
		Folder:      "01_Useful_Practical",
		Marker:      "🟢",
		Criteria: []string{
			"Has working code/implementation available",
			"Addresses a problem you're currently working on",
			"Provides techniques that can be applied immediately",
			"Improves existing workflows or tools",
			"Production-ready or near production-ready",
		},
	},
	CategoryMeaningful: {
		Description: "Important research, foundational, but not immediately applicable",
		Folder:      "02_Meaningful_Research",
		Marker:      "🟡",
		Criteria: []string{
			"Novel theoretical contributions",
			"Benchmarks or datasets that advance the field",
			"Architectural innovations (but complex to implement)",
			"State-of-the-art results but requires significant resources",
			"Good for understanding trends and directions",
		},
	},
	CategoryImpractical: {
		Description: "Too theoretical, too far future, niche, or not relevant",
		Folder:      "03_Impractical_Future",
		Marker:      "🔴",
		Criteria: []string{
			"Requires hardware/compute not available",
			"Purely theoretical without clear path to application",
			"Addresses problems you don't have",
			"Superseded by newer work",
			"Too niche or specialized for your needs",
		},
	},
}

// ReviewFolder receives papers whose category is unknown.
const ReviewFolder = "04_Needs_Review"

// categoryOrder fixes the presentation order for prompts and reports.
var categoryOrder = []Category{CategoryUseful, CategoryMeaningful, CategoryImpractical}

// PaperAnalysis is the structured verdict for a single paper. Field names
// follow the JSON the oracle is asked to produce.
type PaperAnalysis struct {
	Filename              string   `json:"filename"`
	Filepath              string   `json:"filepath"`
	Title                 string   `json:"title"`
	Authors               string   `json:"authors"`
	Year                  string   `json:"year"`
	Category              Category `json:"category"`
	Confidence            string   `json:"confidence"`
	Summary               string   `json:"summary"`
	KeyContributions      []string `json:"key_contributions"`
	PracticalApplications []string `json:"practical_applications"`
	Limitations           []string `json:"limitations"`
	RelevanceReasoning    string   `json:"relevance_reasoning"`
	EstimatedTimeToValue  string   `json:"estimated_time_to_value"`
	Tags                  []string `json:"tags"`
	Error                 string   `json:"error,omitempty"`
}

// bucket maps any category value onto the four report buckets.
func bucket(c Category) Category {
	if _, ok := Categories[c]; ok {
		return c
	}
	return CategoryUnknown
}
