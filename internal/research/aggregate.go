package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/an0763229796-cpu/AlphaDrop/internal/extract"
	"github.com/an0763229796-cpu/AlphaDrop/internal/gemini"
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
)

// AggregationError reports which segment of a multi-segment analysis could
// not be parsed. The whole merge is aborted; callers never receive a
// partially-populated report.
type AggregationError struct {
	Segment string
	Snippet string
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("research: segment %q returned unparseable output: %v", e.Segment, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// Partial payloads: each segment contributes disjoint top-level sections.
// A segment may also volunteer its own "sources" array, which joins the
// grounding citations during dedup.

type corePayload struct {
	TLDR     models.TLDR     `json:"tldr"`
	Overview models.Overview `json:"overview"`
	Tech     models.Tech     `json:"tech"`
	Sources  []models.Source `json:"sources"`
}

type fundingPayload struct {
	Funding    models.Funding    `json:"funding"`
	Tokenomics models.Tokenomics `json:"tokenomics"`
	Sources    []models.Source   `json:"sources"`
}

type signalsPayload struct {
	Metrics     models.Metrics   `json:"metrics"`
	Sentiment   models.Sentiment `json:"sentiment"`
	Competitors []string         `json:"competitors"`
	Risks       []string         `json:"risks"`
	Verdict     models.Verdict   `json:"verdict"`
	Sources     []models.Source  `json:"sources"`
}

// aggregate runs the three deep-dive segments concurrently, parses each,
// and merges them into one report. A provider failure or a parse failure
// in any segment aborts the whole operation.
func (s *Service) aggregate(ctx context.Context, name string) (*models.ProjectAnalysis, error) {
	var responses [3]*gemini.Response

	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range analysisSegments {
		g.Go(func() error {
			resp, err := s.requestSegment(gctx, seg, name)
			if err != nil {
				return fmt.Errorf("research: segment %s: %w", seg.name, err)
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	core, err := extract.Into[corePayload](responses[0].Text)
	if err != nil {
		return nil, segmentError(analysisSegments[0].name, err)
	}
	funding, err := extract.Into[fundingPayload](responses[1].Text)
	if err != nil {
		return nil, segmentError(analysisSegments[1].name, err)
	}
	signals, err := extract.Into[signalsPayload](responses[2].Text)
	if err != nil {
		return nil, segmentError(analysisSegments[2].name, err)
	}

	report := &models.ProjectAnalysis{
		ProjectName: strings.TrimSpace(name),
		TLDR:        core.TLDR,
		Overview:    core.Overview,
		Tech:        core.Tech,
		Funding:     funding.Funding,
		Tokenomics:  funding.Tokenomics,
		Metrics:     signals.Metrics,
		Sentiment:   signals.Sentiment,
		Competitors: signals.Competitors,
		Risks:       signals.Risks,
		Verdict:     signals.Verdict,
	}
	report.Verdict.Score = clampScore(report.Verdict.Score)
	report.Sources = dedupeSources(
		responses[0].Citations, responses[1].Citations, responses[2].Citations,
		core.Sources, funding.Sources, signals.Sources,
	)
	autocorrectSocials(report)

	return report, nil
}

// requestSegment substitutes the project name into the segment's template
// and issues one grounded model call under the per-segment timeout.
func (s *Service) requestSegment(ctx context.Context, seg segment, name string) (*gemini.Response, error) {
	prompt := strings.ReplaceAll(seg.prompt, placeholder, strings.TrimSpace(name))
	if s.segmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.segmentTimeout)
		defer cancel()
	}
	return s.gen.Generate(ctx, gemini.Request{
		Prompt:            prompt,
		SystemInstruction: researcherInstruction,
		SearchGrounding:   true,
	})
}

func segmentError(name string, err error) error {
	agg := &AggregationError{Segment: name, Err: err}
	var pe *extract.ParseError
	if errors.As(err, &pe) {
		agg.Snippet = pe.Snippet
	}
	return agg
}

// dedupeSources merges citation lists in order, keeping one entry per URI.
// First appearance fixes the position; a later duplicate's title wins when
// non-empty.
func dedupeSources(lists ...[]models.Source) []models.Source {
	index := make(map[string]int)
	out := []models.Source{}
	for _, list := range lists {
		for _, src := range list {
			if src.URI == "" {
				continue
			}
			if i, ok := index[src.URI]; ok {
				if src.Title != "" {
					out[i].Title = src.Title
				}
				continue
			}
			index[src.URI] = len(out)
			out = append(out, src)
		}
	}
	return out
}

// Domains that show up in citations but are never a project's own site.
var nonCanonicalDomains = []string{"medium", "linkedin", "crunchbase", "defillama", "twitter"}

// autocorrectSocials fills missing website/twitter links from the citation
// list when the model omitted them. Present values are never overwritten.
func autocorrectSocials(report *models.ProjectAnalysis) {
	socials := &report.Overview.Socials

	if isPlaceholder(socials.Twitter) {
		for _, src := range report.Sources {
			u := strings.ToLower(src.URI)
			if strings.Contains(u, "twitter.com") || strings.Contains(u, "//x.com") || strings.Contains(u, "www.x.com") {
				socials.Twitter = src.URI
				break
			}
		}
	}

	if isPlaceholder(socials.Website) {
		name := strings.ToLower(strings.TrimSpace(report.ProjectName))
		if pick := pickWebsite(report.Sources, socials, name); pick != "" {
			socials.Website = pick
		}
	}
}

// pickWebsite chooses the project's own site from the source list. Sources
// whose URI is already claimed by another socials field (docs, twitter) are
// never the website. A "home"/"official" title beats a title that merely
// mentions the project name.
func pickWebsite(sources []models.Source, socials *models.Socials, name string) string {
	fallback := ""
	for _, src := range sources {
		u := strings.ToLower(src.URI)
		if hasNonCanonicalDomain(u) || src.URI == socials.Docs || src.URI == socials.Twitter {
			continue
		}
		title := strings.ToLower(src.Title)
		if strings.Contains(title, "home") || strings.Contains(title, "official") {
			return src.URI
		}
		if fallback == "" && name != "" && strings.Contains(title, name) {
			fallback = src.URI
		}
	}
	return fallback
}

func hasNonCanonicalDomain(uri string) bool {
	for _, d := range nonCanonicalDomains {
		if strings.Contains(uri, d) {
			return true
		}
	}
	return false
}

func isPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "null", "none", "unknown", "undefined":
		return true
	}
	return false
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
