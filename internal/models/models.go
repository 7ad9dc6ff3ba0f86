// Package models defines the domain types for AlphaDrop.
package models

// Project lifecycle statuses.
const (
	StatusResearching = "researching"
	StatusFarming     = "farming"
	StatusClaimed     = "claimed"
	StatusIgnored     = "ignored"
)

// Conviction tiers, derived from the verdict score.
const (
	TierS = "S"
	TierA = "A"
	TierB = "B"
	TierC = "C"
)

// Farming task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
)

// Farming task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// TierForScore derives the conviction tier from a 1-10 verdict score.
func TierForScore(score int) string {
	switch {
	case score >= 8:
		return TierS
	case score >= 6:
		return TierA
	default:
		return TierB
	}
}

// Source is a search-grounded citation backing part of a report.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// TLDR is the executive summary section of a deep-dive report.
type TLDR struct {
	Summary       string `json:"summary"`
	ProblemSolved string `json:"problemSolved"`
	Backers       string `json:"backers"`
	Status        string `json:"status"`
	QuickVerdict  string `json:"quickVerdict"` // Low, Medium, High
}

// Socials holds the project's canonical links.
type Socials struct {
	Website string `json:"website,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Docs    string `json:"docs,omitempty"`
}

// Overview describes what the project is and who it is for.
type Overview struct {
	Category       string  `json:"category"`
	TargetAudience string  `json:"targetAudience"`
	Socials        Socials `json:"socials"`
}

// FundingRound is one disclosed raise.
type FundingRound struct {
	Stage     string   `json:"stage"`
	Amount    string   `json:"amount"`
	Investors []string `json:"investors"`
	Date      string   `json:"date,omitempty"`
}

// Funding summarises the project's backing.
type Funding struct {
	Rounds          []FundingRound `json:"rounds"`
	KeyBackers      []string       `json:"keyBackers"`
	HasTier1Backing bool           `json:"hasTier1Backing"`
}

// Tech covers chain, architecture, and moat.
type Tech struct {
	Chain           string `json:"chain"`
	Architecture    string `json:"architecture"`
	Differentiation string `json:"differentiation"`
}

// Tokenomics covers token status and airdrop outlook.
type Tokenomics struct {
	TokenStatus       string `json:"tokenStatus"` // Live, Unreleased, Confirmed
	Ticker            string `json:"ticker,omitempty"`
	Supply            string `json:"supply,omitempty"`
	AirdropPrediction string `json:"airdropPrediction"`
}

// Metrics holds on-chain usage figures.
type Metrics struct {
	TVL           string `json:"tvl,omitempty"`
	Users         string `json:"users,omitempty"`
	GrowthComment string `json:"growthComment"`
}

// Sentiment captures community mood and narrative fit.
type Sentiment struct {
	TwitterVibe  string `json:"twitterVibe"` // Positive, Neutral, Negative
	NarrativeFit string `json:"narrativeFit"`
}

// Verdict is the closing judgement of a deep-dive report.
type Verdict struct {
	Score         int      `json:"score"` // 1-10
	FinalThoughts string   `json:"finalThoughts"`
	ActionPlan    []string `json:"actionPlan"`
}

// ProjectAnalysis is the canonical merged deep-dive report. The score is
// always within [1,10] and Sources never contains two entries with the
// same URI.
type ProjectAnalysis struct {
	ProjectName string     `json:"projectName"`
	TLDR        TLDR       `json:"tldr"`
	Overview    Overview   `json:"overview"`
	Funding     Funding    `json:"funding"`
	Tech        Tech       `json:"tech"`
	Tokenomics  Tokenomics `json:"tokenomics"`
	Metrics     Metrics    `json:"metrics"`
	Sentiment   Sentiment  `json:"sentiment"`
	Competitors []string   `json:"competitors"`
	Risks       []string   `json:"risks"`
	Verdict     Verdict    `json:"verdict"`
	Sources     []Source   `json:"sources"`
}

// QuickScanSignals are the three AZ9 signal summaries of a quick scan.
type QuickScanSignals struct {
	SmartMoney string `json:"smartMoney"`
	Community  string `json:"community"`
	Stage      string `json:"stage"`
}

// QuickScan is the lightweight single-call analysis shape.
type QuickScan struct {
	ProjectName string           `json:"projectName"`
	Narrative   string           `json:"narrative"`
	Score       int              `json:"score"` // 1-10
	Signals     QuickScanSignals `json:"signals"`
	Verdict     string           `json:"verdict"`
	Strategy    []string         `json:"strategy"`
	Sources     []Source         `json:"sources"`
}

// CryptoRankRound is one raise in the funding report, with valuation and
// vesting detail.
type CryptoRankRound struct {
	Type        string   `json:"type"` // Seed, Private, Strategic, Public/IDO
	Date        string   `json:"date"`
	Price       string   `json:"price"`
	Raised      string   `json:"raised"`
	Valuation   string   `json:"valuation"`
	ROI         string   `json:"roi"`
	Investors   []string `json:"investors"`
	UnlockTerms string   `json:"unlockTerms"`
}

// RankTokenomics holds supply and valuation figures for the funding report.
type RankTokenomics struct {
	InitialSupply         string `json:"initialSupply"`
	TotalSupply           string `json:"totalSupply"`
	InitialMarketCap      string `json:"initialMarketCap"`
	FullyDilutedValuation string `json:"fullyDilutedValuation"`
}

// InvestorAnalysis assesses the quality of a project's backers.
type InvestorAnalysis struct {
	Tier1Count    int      `json:"tier1Count"`
	LeadInvestors []string `json:"leadInvestors"`
	Commentary    string   `json:"commentary"`
}

// InvestmentVerdict is the closing judgement of a funding report.
type InvestmentVerdict struct {
	Rating    string   `json:"rating"`    // Undervalued, Fair Value, Overvalued, High Risk
	RiskLevel string   `json:"riskLevel"` // Low, Medium, High, Degen
	Summary   string   `json:"summary"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
}

// CryptoRankReport is the heavyweight financial deep dive. It is a
// distinct shape from ProjectAnalysis and is always generated fresh.
type CryptoRankReport struct {
	ProjectName       string            `json:"projectName"`
	Ticker            string            `json:"ticker"`
	Category          string            `json:"category"`
	TotalRaised       string            `json:"totalRaised"`
	Rounds            []CryptoRankRound `json:"rounds"`
	Tokenomics        RankTokenomics    `json:"tokenomics"`
	InvestorAnalysis  InvestorAnalysis  `json:"investorAnalysis"`
	InvestmentVerdict InvestmentVerdict `json:"investmentVerdict"`
	Sources           []Source          `json:"sources"`
}

// FarmingTask is one step in a project's farming checklist.
type FarmingTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// StoredProject is a user-tracked project with an optional embedded
// analysis snapshot.
type StoredProject struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Ticker        string            `json:"ticker,omitempty"`
	AddedAt       int64             `json:"addedAt"` // unix milliseconds
	StartDate     string            `json:"startDate,omitempty"`
	TargetDate    string            `json:"targetDate,omitempty"`
	Status        string            `json:"status"`
	Tier          string            `json:"tier"`
	Analysis      *ProjectAnalysis  `json:"analysis,omitempty"`
	FundingReport *CryptoRankReport `json:"fundingReport,omitempty"`
	Tasks         []FarmingTask     `json:"tasks"`
	Notes         string            `json:"notes,omitempty"`
}

// SearchHistoryItem is one prior query, newest-first in storage.
type SearchHistoryItem struct {
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Score     int    `json:"score,omitempty"`
}

// EvaluationCandidate is one project submitted for batch screening.
type EvaluationCandidate struct {
	Name    string `json:"name"`
	Context string `json:"context"`
}

// EvaluationResult is the screening outcome for one candidate.
type EvaluationResult struct {
	Name    string `json:"name"`
	IsMatch bool   `json:"isMatch"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
}
