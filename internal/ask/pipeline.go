// Package ask orchestrates a single run: plan the query, ground it with
// search and snippets, generate the answer, and analyze the result.
package ask

import (
	"context"
	"log/slog"

	"github.com/brandlens/brandlens/models"
	"github.com/brandlens/brandlens/pkg/analyze"
	"github.com/brandlens/brandlens/pkg/budget"
	"github.com/brandlens/brandlens/pkg/llm"
	"github.com/brandlens/brandlens/pkg/prompt"
	"github.com/brandlens/brandlens/pkg/queryplan"
	"github.com/brandlens/brandlens/pkg/search"
	"github.com/brandlens/brandlens/pkg/selector"
	"github.com/brandlens/brandlens/pkg/snippet"
	"github.com/brandlens/brandlens/pkg/tokens"
)

// PlaceholderAnswer substitutes for the model output when the generation
// capability fails. Token counts stay zero in that case.
const PlaceholderAnswer = "I was unable to generate an answer at this time. Please try again later."

// Pipeline wires the run's components. All resource caps travel inside the
// config; observed usage is accumulated in an explicit tracker, never a
// global.
type Pipeline struct {
	Config    models.RunConfig
	Logger    *slog.Logger
	Search    *search.Client
	Fetcher   *snippet.Fetcher
	Generator llm.Generator
}

// Run executes the pipeline and always produces one well-formed report,
// even when fully degraded. The returned error is non-nil only when the
// generation call failed; the report is valid either way and the caller
// decides whether to surface it.
func (p *Pipeline) Run(ctx context.Context) (models.Report, error) {
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracker := budget.NewTracker(budget.Budget{
		MaxSearches: cfg.MaxSearches,
		MaxSources:  cfg.MaxSources,
	})

	var snippets []snippet.Snippet
	if cfg.Ground && cfg.MaxSources > 0 {
		snippets = p.ground(ctx, tracker, logger)
		tracker.SetSourcesIncluded(len(snippets))
	}

	assembler := prompt.Assembler{
		Brand:         cfg.Brand,
		BrandURL:      cfg.URL,
		CompactPrompt: cfg.CompactPrompt,
		MustLinkSite:  cfg.MustLinkSite,
	}
	assembled := assembler.Build(cfg.Question, snippets)
	inputEstimate := assembler.InputTokens(assembled)

	answer := PlaceholderAnswer
	result, genErr := p.Generator.Generate(ctx, assembled)
	if genErr != nil {
		logger.Warn("generation failed, substituting placeholder answer", "error", genErr)
	} else {
		answer = result.Text

		// Provider-native usage wins; the uniform estimator fills in when
		// the provider reports none.
		inputTokens := result.InputTokens
		if inputTokens == 0 {
			inputTokens = inputEstimate
		}
		outputTokens := result.OutputTokens
		if outputTokens == 0 {
			outputTokens = tokens.Count(answer, tokens.DefaultEncoding)
		}
		tracker.SetTokens(inputTokens, outputTokens)
	}

	contextURLs := make([]string, 0, len(snippets))
	for _, s := range snippets {
		contextURLs = append(contextURLs, s.URL)
	}
	analysis := analyze.Analyze(answer, cfg.Brand, cfg.URL, contextURLs)

	report := models.NewReport()
	report.HumanResponseMarkdown = answer
	report.Citations = analysis.Citations
	report.Mentions = analysis.Mentions
	report.OwnedSources = analysis.OwnedSources
	report.Sources = analysis.ExternalSources
	report.Metadata = models.Metadata{
		Budgets: tracker.Budget(),
		Usage:   tracker.Usage(),
	}
	return report, genErr
}

// ground runs the single search, selects candidate sources, and fetches
// their snippets. Search failure and zero results both degrade to the
// synthetic brand-URL candidate; only a search that actually served results
// counts against usage.
func (p *Pipeline) ground(ctx context.Context, tracker *budget.Tracker, logger *slog.Logger) []snippet.Snippet {
	cfg := p.Config

	var candidates []selector.Candidate
	if cfg.MaxSearches > 0 {
		query := queryplan.Plan(cfg.Brand, cfg.Question, cfg.SearchQuery)
		logger.Debug("searching", "query", query)

		results, err := p.Search.Search(ctx, query)
		if err != nil {
			logger.Warn("search degraded to zero results", "error", err)
		}
		if len(results) > 0 {
			tracker.SetSearches(1)
			urls := make([]string, 0, len(results))
			for _, r := range results {
				urls = append(urls, r.URL)
			}
			candidates = selector.Select(urls, cfg.URL, cfg.MaxSources)
		}
	}

	if len(candidates) == 0 {
		logger.Debug("falling back to brand URL as the only candidate")
		candidates = selector.Fallback(cfg.URL)
	}

	return p.Fetcher.FetchAll(ctx, candidates)
}
