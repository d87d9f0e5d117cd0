// Package budget tracks configured resource caps and observed consumption.
// Both are explicit values threaded through the run, never process globals.
package budget

// Budget holds the configured caps for a run. Immutable once created.
type Budget struct {
	MaxSearches int `json:"max_searches"`
	MaxSources  int `json:"max_sources"`
}

// Usage records what the run actually consumed.
type Usage struct {
	Searches        int `json:"searches"`
	SourcesIncluded int `json:"sources_included"`
	InputTokens     int `json:"input_tokens"`
	OutputTokens    int `json:"output_tokens"`
	TotalTokens     int `json:"total_tokens"`
}

// Tracker accumulates usage against a fixed budget.
type Tracker struct {
	budget Budget
	usage  Usage
}

func NewTracker(b Budget) *Tracker {
	return &Tracker{budget: b}
}

// SetSearches records the number of searches actually served.
func (t *Tracker) SetSearches(n int) {
	t.usage.Searches = n
}

// SetSourcesIncluded records the count of snippets fetched and included.
func (t *Tracker) SetSourcesIncluded(n int) {
	t.usage.SourcesIncluded = n
}

// SetTokens records the token consumption of the generation call.
func (t *Tracker) SetTokens(input, output int) {
	t.usage.InputTokens = input
	t.usage.OutputTokens = output
}

func (t *Tracker) Budget() Budget {
	return t.budget
}

// Usage returns the accumulated usage with TotalTokens finalized.
func (t *Tracker) Usage() Usage {
	u := t.usage
	u.TotalTokens = u.InputTokens + u.OutputTokens
	return u
}
