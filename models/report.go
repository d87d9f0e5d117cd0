package models

import "github.com/brandlens/brandlens/pkg/budget"

// Report is the structured visibility report emitted for a single run.
// The answer text is carried byte-identical to what the model generated.
type Report struct {
	HumanResponseMarkdown string   `json:"human_response_markdown"`
	Citations             []string `json:"citations"`
	Mentions              []string `json:"mentions"`
	OwnedSources          []string `json:"owned_sources"`
	Sources               []string `json:"sources"`
	Metadata              Metadata `json:"metadata"`
}

// Metadata pairs the configured caps with the consumption observed
// during the run.
type Metadata struct {
	Budgets budget.Budget `json:"budgets"`
	Usage   budget.Usage  `json:"usage"`
}

// NewReport returns a report with empty (non-nil) slices so the JSON output
// serializes arrays, never null.
func NewReport() Report {
	return Report{
		Citations:    []string{},
		Mentions:     []string{},
		OwnedSources: []string{},
		Sources:      []string{},
	}
}
