package research

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/an0763229796-cpu/AlphaDrop/internal/gemini"
	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
	"github.com/an0763229796-cpu/AlphaDrop/internal/testutil"
)

// Prompt markers unique to each request kind.
const (
	markCore    = `top-level keys: "tldr"`
	markFunding = `top-level keys: "funding"`
	markSignals = `top-level keys: "metrics"`
	markScan    = "airdrop potential using the AZ9 methodology"
	markReport  = "complete funding report"
	markBatch   = "AZ9 Airdrop Checklist"
)

const coreJSON = `{
  "tldr": {"summary": "Parallel EVM L1", "problemSolved": "EVM throughput", "backers": "Paradigm", "status": "Testnet", "quickVerdict": "High"},
  "overview": {"category": "L1", "targetAudience": "DeFi users", "socials": {"docs": "https://docs.monad.xyz"}},
  "tech": {"chain": "Monad", "architecture": "Parallel execution", "differentiation": "10k TPS EVM"}
}`

const fundingJSON = `{
  "funding": {"rounds": [{"stage": "Series A", "amount": "$225M", "investors": ["Paradigm"], "date": "2024-04"}], "keyBackers": ["Paradigm"], "hasTier1Backing": true},
  "tokenomics": {"tokenStatus": "Unreleased", "airdropPrediction": "Likely after mainnet"}
}`

const signalsJSON = `{
  "metrics": {"tvl": "n/a", "users": "200k testnet", "growthComment": "strong"},
  "sentiment": {"twitterVibe": "Positive", "narrativeFit": "Parallel EVM"},
  "competitors": ["Sei", "Aptos"],
  "risks": ["unlaunched token"],
  "verdict": {"score": 9, "finalThoughts": "farm it", "actionPlan": ["bridge", "swap"]},
  "sources": [{"title": "Monad | Official Home", "uri": "https://monad.xyz"}]
}`

func happyRules() []testutil.Rule {
	return []testutil.Rule{
		{Match: markCore, Resp: &gemini.Response{
			Text:      "```json\n" + coreJSON + "\n```",
			Citations: []models.Source{{Title: "Monad docs", URI: "https://docs.monad.xyz"}},
		}},
		{Match: markFunding, Resp: &gemini.Response{
			Text:      "Here you go: " + fundingJSON,
			Citations: []models.Source{{Title: "Funding news", URI: "https://news.example/monad"}},
		}},
		{Match: markSignals, Resp: &gemini.Response{
			Text:      signalsJSON,
			Citations: []models.Source{{Title: "Monad on X", URI: "https://twitter.com/monad_xyz"}},
		}},
	}
}

func newTestService(gen gemini.Generator, store *testutil.MemoryStore) *Service {
	return NewService(gen, store, Config{SegmentTimeout: time.Second, CacheTTL: time.Hour})
}

func TestGetAnalysis_MergesSegments(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: happyRules()}
	svc := newTestService(gen, testutil.NewMemoryStore())

	report, err := svc.GetAnalysis(context.Background(), "Monad", false)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if gen.Calls() != 3 {
		t.Errorf("calls = %d, want 3 concurrent segments", gen.Calls())
	}
	if report.ProjectName != "Monad" {
		t.Errorf("projectName = %q", report.ProjectName)
	}
	if report.TLDR.QuickVerdict != "High" || report.Tech.Chain != "Monad" {
		t.Errorf("core segment not merged: %+v", report.TLDR)
	}
	if !report.Funding.HasTier1Backing || report.Tokenomics.TokenStatus != "Unreleased" {
		t.Errorf("funding segment not merged: %+v", report.Funding)
	}
	if report.Verdict.Score != 9 || len(report.Competitors) != 2 {
		t.Errorf("signals segment not merged: %+v", report.Verdict)
	}
	if report.Verdict.Score < 1 || report.Verdict.Score > 10 {
		t.Errorf("score out of range: %d", report.Verdict.Score)
	}
	if len(report.Sources) == 0 {
		t.Fatal("sources should be populated from citations")
	}
	seen := map[string]bool{}
	for _, src := range report.Sources {
		if seen[src.URI] {
			t.Errorf("duplicate source uri %q", src.URI)
		}
		seen[src.URI] = true
	}
	// Autocorrection: twitter from citations, website from embedded sources.
	if report.Overview.Socials.Twitter != "https://twitter.com/monad_xyz" {
		t.Errorf("twitter = %q", report.Overview.Socials.Twitter)
	}
	if report.Overview.Socials.Website != "https://monad.xyz" {
		t.Errorf("website = %q", report.Overview.Socials.Website)
	}
}

func TestGetAnalysis_SecondCallServedFromCache(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: happyRules()}
	svc := newTestService(gen, testutil.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.GetAnalysis(ctx, "Monad", false)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetAnalysis(ctx, "monad", false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if gen.Calls() != 3 {
		t.Errorf("calls = %d, cache hit must not touch the provider", gen.Calls())
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached report differs from the original")
	}
}

func TestGetAnalysis_ForceRefreshBypassesCache(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: happyRules()}
	svc := newTestService(gen, testutil.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.GetAnalysis(ctx, "Monad", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetAnalysis(ctx, "Monad", true); err != nil {
		t.Fatal(err)
	}
	if gen.Calls() != 6 {
		t.Errorf("calls = %d, force refresh must re-run all segments", gen.Calls())
	}
}

func TestGetAnalysis_SegmentParseFailureAborts(t *testing.T) {
	rules := happyRules()
	rules[1].Resp = &gemini.Response{Text: "I could not find structured funding data, sorry."}
	gen := &testutil.ScriptedGenerator{Rules: rules}
	store := testutil.NewMemoryStore()
	svc := newTestService(gen, store)

	_, err := svc.GetAnalysis(context.Background(), "Monad", false)
	var agg *AggregationError
	if !errors.As(err, &agg) {
		t.Fatalf("err = %v, want AggregationError", err)
	}
	if agg.Segment != "funding" {
		t.Errorf("failed segment = %q, want funding", agg.Segment)
	}
	if agg.Snippet == "" {
		t.Error("snippet should carry the offending text")
	}
	if len(store.Keys()) != 0 {
		t.Errorf("store keys = %v, nothing may be cached on failure", store.Keys())
	}
}

func TestGetAnalysis_ProviderFailureNamesSegment(t *testing.T) {
	rules := happyRules()
	rules[2].Resp = nil
	rules[2].Err = errors.New("quota exhausted")
	gen := &testutil.ScriptedGenerator{Rules: rules}
	svc := newTestService(gen, testutil.NewMemoryStore())

	_, err := svc.GetAnalysis(context.Background(), "Monad", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, rules[2].Err) {
		t.Errorf("provider error should propagate unchanged, got %v", err)
	}
}

func TestGetAnalysis_EmptyName(t *testing.T) {
	svc := newTestService(&testutil.ScriptedGenerator{}, testutil.NewMemoryStore())
	if _, err := svc.GetAnalysis(context.Background(), "  ", false); err == nil {
		t.Error("expected error for blank name")
	}
}

// slowGenerator blocks every call long enough for concurrent requests to
// overlap, then delegates to the scripted rules.
type slowGenerator struct {
	inner *testutil.ScriptedGenerator
	delay time.Duration
}

func (g *slowGenerator) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	time.Sleep(g.delay)
	return g.inner.Generate(ctx, req)
}

func TestGetAnalysis_ConcurrentCallsShareOneAggregation(t *testing.T) {
	inner := &testutil.ScriptedGenerator{Rules: happyRules()}
	gen := &slowGenerator{inner: inner, delay: 50 * time.Millisecond}
	svc := newTestService(gen, testutil.NewMemoryStore())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetAnalysis(context.Background(), "Monad", false); err != nil {
				t.Errorf("GetAnalysis: %v", err)
			}
		}()
	}
	wg.Wait()

	if inner.Calls() != 3 {
		t.Errorf("calls = %d, concurrent requests must share one aggregation", inner.Calls())
	}
}

func TestQuickScan_ParsesAndCaches(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: []testutil.Rule{{
		Match: markScan,
		Resp: &gemini.Response{
			Text:      "```json\n{\"narrative\":\"L1\",\"score\":12,\"signals\":{\"smartMoney\":\"Paradigm\",\"community\":\"hot\",\"stage\":\"Testnet\"},\"verdict\":\"farm\",\"strategy\":[\"bridge\"]}\n```",
			Citations: []models.Source{{Title: "Monad", URI: "https://monad.xyz"}},
		},
	}}}
	svc := newTestService(gen, testutil.NewMemoryStore())
	ctx := context.Background()

	scan, err := svc.QuickScan(ctx, "Monad", false)
	if err != nil {
		t.Fatalf("QuickScan: %v", err)
	}
	if scan.ProjectName != "Monad" {
		t.Errorf("projectName = %q", scan.ProjectName)
	}
	if scan.Score != 10 {
		t.Errorf("score = %d, want clamped to 10", scan.Score)
	}
	if len(scan.Sources) != 1 {
		t.Errorf("sources = %+v", scan.Sources)
	}

	if _, err := svc.QuickScan(ctx, "monad", false); err != nil {
		t.Fatal(err)
	}
	if gen.Calls() != 1 {
		t.Errorf("calls = %d, second scan must come from cache", gen.Calls())
	}
}

func TestFundingReport_AlwaysLive(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: []testutil.Rule{{
		Match: markReport,
		Resp: &gemini.Response{
			Text: `{"ticker":"MON","category":"L1","totalRaised":"$244M","rounds":[{"type":"Seed","date":"2023-02","price":"Undisclosed","raised":"$19M","valuation":"Undisclosed","roi":"n/a","investors":["Dragonfly"],"unlockTerms":"Undisclosed"}],"tokenomics":{"initialSupply":"","totalSupply":"","initialMarketCap":"","fullyDilutedValuation":""},"investorAnalysis":{"tier1Count":2,"leadInvestors":["Paradigm"],"commentary":"top shelf"},"investmentVerdict":{"rating":"Fair Value","riskLevel":"Medium","summary":"solid","pros":["backers"],"cons":["unlaunched"]}}`,
		},
	}}}
	svc := newTestService(gen, testutil.NewMemoryStore())
	ctx := context.Background()

	report, err := svc.FundingReport(ctx, "Monad")
	if err != nil {
		t.Fatalf("FundingReport: %v", err)
	}
	if report.ProjectName != "Monad" {
		t.Errorf("projectName = %q, should default to the query name", report.ProjectName)
	}
	if report.InvestorAnalysis.Tier1Count != 2 {
		t.Errorf("tier1Count = %d", report.InvestorAnalysis.Tier1Count)
	}

	if _, err := svc.FundingReport(ctx, "Monad"); err != nil {
		t.Fatal(err)
	}
	if gen.Calls() != 2 {
		t.Errorf("calls = %d, funding reports are never cached", gen.Calls())
	}
}

func TestBatchEvaluate_HappyPath(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: []testutil.Rule{{
		Match: markBatch,
		Resp:  &gemini.Response{Text: `[{"name":"X","isMatch":true,"score":8,"reason":"L2, early"}]`},
	}}}
	svc := newTestService(gen, testutil.NewMemoryStore())

	results := svc.BatchEvaluate(context.Background(), []models.EvaluationCandidate{{Name: "X", Context: "L2"}})
	if len(results) != 1 || !results[0].IsMatch || results[0].Score != 8 {
		t.Errorf("results = %+v", results)
	}
}

func TestBatchEvaluate_NonArrayPayloadYieldsEmptyList(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: []testutil.Rule{{
		Match: markBatch,
		Resp:  &gemini.Response{Text: `{"name":"X","isMatch":true}`},
	}}}
	svc := newTestService(gen, testutil.NewMemoryStore())

	results := svc.BatchEvaluate(context.Background(), []models.EvaluationCandidate{{Name: "X", Context: "L2"}})
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil list", results)
	}
}

func TestBatchEvaluate_ProviderFailureYieldsEmptyList(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Rules: []testutil.Rule{{
		Match: markBatch,
		Err:   errors.New("network down"),
	}}}
	svc := newTestService(gen, testutil.NewMemoryStore())

	results := svc.BatchEvaluate(context.Background(), []models.EvaluationCandidate{{Name: "X", Context: "L2"}})
	if len(results) != 0 {
		t.Errorf("results = %v, want empty list", results)
	}
}
