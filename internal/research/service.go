// Package research implements the AI research pipeline: per-segment model
// requests, defensive JSON extraction, multi-segment aggregation, and TTL
// caching of finished reports.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/an0763229796-cpu/AlphaDrop/internal/cache"
	"github.com/an0763229796-cpu/AlphaDrop/internal/extract"
	"github.com/an0763229796-cpu/AlphaDrop/internal/gemini"
	"github.com/an0763229796-cpu/AlphaDrop/internal/kvstore"
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
)

// DefaultSegmentTimeout bounds one segment's model call.
const DefaultSegmentTimeout = 2 * time.Minute

// Config holds research pipeline settings.
type Config struct {
	SegmentTimeout time.Duration
	CacheTTL       time.Duration
}

// Service is the public entry point for analyses, funding reports, and
// batch screening.
type Service struct {
	gen            gemini.Generator
	analyses       *cache.Cache[models.ProjectAnalysis]
	scans          *cache.Cache[models.QuickScan]
	segmentTimeout time.Duration

	// flight collapses concurrent aggregations for the same normalized
	// name, so at most one is in flight per project.
	flight singleflight.Group
}

// NewService creates a research service over the given generator and store.
func NewService(gen gemini.Generator, store kvstore.Store, cfg Config) *Service {
	timeout := cfg.SegmentTimeout
	if timeout <= 0 {
		timeout = DefaultSegmentTimeout
	}
	return &Service{
		gen:            gen,
		analyses:       cache.New[models.ProjectAnalysis](store, "analysis", cfg.CacheTTL),
		scans:          cache.New[models.QuickScan](store, "scan", cfg.CacheTTL),
		segmentTimeout: timeout,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetAnalysis returns the deep-dive report for name. A cached report
// younger than the TTL is served without touching the provider unless
// force is set; a fresh result is written to the cache unconditionally.
func (s *Service) GetAnalysis(ctx context.Context, name string, force bool) (*models.ProjectAnalysis, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("research: project name is required")
	}

	if !force {
		if hit, ok := s.analyses.Get(ctx, key); ok {
			slog.Debug("serving analysis from cache", slog.String("project", key))
			return &hit, nil
		}
	}

	v, err, _ := s.flight.Do("analysis:"+key, func() (any, error) {
		report, err := s.aggregate(ctx, name)
		if err != nil {
			return nil, err
		}
		s.analyses.Put(ctx, key, *report)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ProjectAnalysis), nil
}

// QuickScan returns the lightweight single-call AZ9 analysis for name,
// with the same cache discipline as GetAnalysis under its own namespace.
func (s *Service) QuickScan(ctx context.Context, name string, force bool) (*models.QuickScan, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("research: project name is required")
	}

	if !force {
		if hit, ok := s.scans.Get(ctx, key); ok {
			slog.Debug("serving scan from cache", slog.String("project", key))
			return &hit, nil
		}
	}

	v, err, _ := s.flight.Do("scan:"+key, func() (any, error) {
		resp, err := s.gen.Generate(ctx, gemini.Request{
			Prompt:            strings.ReplaceAll(quickScanPrompt, placeholder, strings.TrimSpace(name)),
			SystemInstruction: researcherInstruction,
			SearchGrounding:   true,
		})
		if err != nil {
			return nil, err
		}
		scan, err := extract.Into[models.QuickScan](resp.Text)
		if err != nil {
			return nil, err
		}
		scan.ProjectName = strings.TrimSpace(name)
		scan.Score = clampScore(scan.Score)
		scan.Sources = dedupeSources(resp.Citations, scan.Sources)
		s.scans.Put(ctx, key, scan)
		return &scan, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.QuickScan), nil
}

// FundingReport generates the CryptoRank-style financial deep dive.
// Funding data is treated as always-fresh: every call is a live one.
func (s *Service) FundingReport(ctx context.Context, name string) (*models.CryptoRankReport, error) {
	if normalizeName(name) == "" {
		return nil, fmt.Errorf("research: project name is required")
	}

	resp, err := s.gen.Generate(ctx, gemini.Request{
		Prompt:            strings.ReplaceAll(fundingReportPrompt, placeholder, strings.TrimSpace(name)),
		SystemInstruction: analystInstruction,
		SearchGrounding:   true,
	})
	if err != nil {
		return nil, err
	}

	report, err := extract.Into[models.CryptoRankReport](resp.Text)
	if err != nil {
		return nil, err
	}
	if report.ProjectName == "" {
		report.ProjectName = strings.TrimSpace(name)
	}
	report.Sources = dedupeSources(resp.Citations, report.Sources)
	return &report, nil
}

// BatchEvaluate scores all candidates against the AZ9 checklist in one
// combined request. Any provider or parse failure yields an empty list:
// callers must treat that as "evaluation unavailable", not "zero matches".
func (s *Service) BatchEvaluate(ctx context.Context, candidates []models.EvaluationCandidate) []models.EvaluationResult {
	if len(candidates) == 0 {
		return []models.EvaluationResult{}
	}

	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("%s (%s)", c.Name, c.Context)
	}

	resp, err := s.gen.Generate(ctx, gemini.Request{
		Prompt:            fmt.Sprintf(batchPrompt, strings.Join(parts, ", ")),
		SystemInstruction: batchInstruction,
		SearchGrounding:   true,
	})
	if err != nil {
		slog.Warn("batch evaluation failed", slog.String("error", err.Error()))
		return []models.EvaluationResult{}
	}

	results, err := extract.Into[[]models.EvaluationResult](resp.Text)
	if err != nil {
		slog.Warn("batch evaluation returned unparseable output", slog.String("error", err.Error()))
		return []models.EvaluationResult{}
	}
	for i := range results {
		results[i].Score = clampScore(results[i].Score)
	}
	return results
}
