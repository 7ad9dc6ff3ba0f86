package research

const placeholder = "{{PROJECT}}"

const researcherInstruction = `You are an expert Crypto Airdrop Researcher specializing in the "AZ9" methodology.
Your goal is to analyze crypto projects to determine their "Early" status and Airdrop Potential.

The AZ9 Methodology Criteria:
1. **New Early Projects:** Is this a new account/project?
2. **Narrative:** Does it fit a hot narrative (e.g., Restaking, L2, AI, Modular, ZK)?
3. **Smart Money:** Are there signs of Tier-1 VC backing (Paradigm, a16z, Binance) or top KOLs following?
4. **Events:** Is there a Testnet, Mainnet, or Upgrade coming up?
5. **On-Chain Activity:** Is there a clear path to interaction (Bridge, Swap, Stake)?

You MUST return the analysis in strictly valid JSON format.
Do not include any conversational text, markdown formatting, or explanations outside the JSON value.
Always use Google Search to find the latest information about the project.`

// A segment is one independent prompt/response round trip covering a
// disjoint subset of the deep-dive report's top-level sections.
type segment struct {
	name   string
	prompt string
}

// The three deep-dive segments. Each owns its sections outright, so the
// merge is a plain union with no field-level conflicts.
var analysisSegments = [3]segment{
	{
		name: "core",
		prompt: `Research the crypto project "{{PROJECT}}". Search for its official website, docs, and Twitter/X account.
Return ONLY a JSON object with exactly these top-level keys: "tldr", "overview", "tech".
Schema:
{
  "tldr": {"summary": string, "problemSolved": string, "backers": string, "status": string, "quickVerdict": "Low"|"Medium"|"High"},
  "overview": {"category": string, "targetAudience": string, "socials": {"website": string, "twitter": string, "docs": string}},
  "tech": {"chain": string, "architecture": string, "differentiation": string}
}`,
	},
	{
		name: "funding",
		prompt: `Research the funding history and token design of the crypto project "{{PROJECT}}". Search for announced raises, lead investors, and any token or points program.
Return ONLY a JSON object with exactly these top-level keys: "funding", "tokenomics".
Schema:
{
  "funding": {"rounds": [{"stage": string, "amount": string, "investors": [string], "date": string}], "keyBackers": [string], "hasTier1Backing": boolean},
  "tokenomics": {"tokenStatus": "Live"|"Unreleased"|"Confirmed", "ticker": string, "supply": string, "airdropPrediction": string}
}`,
	},
	{
		name: "signals",
		prompt: `Evaluate on-chain traction, community sentiment, competition, and risks for the crypto project "{{PROJECT}}", then give an AZ9 verdict with a farming action plan.
Return ONLY a JSON object with exactly these top-level keys: "metrics", "sentiment", "competitors", "risks", "verdict".
Schema:
{
  "metrics": {"tvl": string, "users": string, "growthComment": string},
  "sentiment": {"twitterVibe": "Positive"|"Neutral"|"Negative", "narrativeFit": string},
  "competitors": [string],
  "risks": [string],
  "verdict": {"score": number (1-10), "finalThoughts": string, "actionPlan": [string]}
}`,
	},
}

const quickScanPrompt = `Analyze the crypto project "{{PROJECT}}" for airdrop potential using the AZ9 methodology.
Search for its recent funding, current development stage (Testnet/Mainnet), and active campaigns (Galxe, Zealy, Points system).
Return ONLY a JSON object with this structure:
{
  "projectName": string,
  "narrative": string,
  "score": number (1-10),
  "signals": {"smartMoney": string, "community": string, "stage": string},
  "verdict": string,
  "strategy": [string]
}`

const analystInstruction = `You are a crypto venture analyst producing CryptoRank-style funding reports.
You MUST return strictly valid JSON. No conversational text, no markdown.
Always use Google Search to verify round sizes, valuations, and vesting terms before answering.`

const fundingReportPrompt = `Produce a complete funding report for the crypto project "{{PROJECT}}".
Cover every disclosed round (Seed, Private, Strategic, Public/IDO) with price, raised amount, FDV at raise, ROI versus current price, investors, and unlock/vesting terms. Use "Undisclosed" where a figure was never published.
Return ONLY a JSON object with this structure:
{
  "projectName": string,
  "ticker": string,
  "category": string,
  "totalRaised": string,
  "rounds": [{"type": string, "date": string, "price": string, "raised": string, "valuation": string, "roi": string, "investors": [string], "unlockTerms": string}],
  "tokenomics": {"initialSupply": string, "totalSupply": string, "initialMarketCap": string, "fullyDilutedValuation": string},
  "investorAnalysis": {"tier1Count": number, "leadInvestors": [string], "commentary": string},
  "investmentVerdict": {"rating": "Undervalued"|"Fair Value"|"Overvalued"|"High Risk", "riskLevel": "Low"|"Medium"|"High"|"Degen", "summary": string, "pros": [string], "cons": [string]}
}`

const batchInstruction = `Return ONLY a raw JSON array. No markdown. Start with [ and end with ].`

const batchPrompt = `I have a list of potential crypto projects. Filter them against the AZ9 Airdrop Checklist:
1. Is it a "New/Early" project?
2. Is it in a "Hot Narrative" (L2, Restaking, AI, Modular)?
3. Is there "Smart Money" or high potential?

List: %s

Return a JSON array where each object contains:
- name: string
- isMatch: boolean (true if it meets more than 2 AZ9 criteria)
- score: number (1-10)
- reason: string (short explanation based on the checklist)`
