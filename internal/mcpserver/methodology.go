package mcpserver

// Methodology describes the AZ9 research methodology that every analysis,
// scan, and screening tool applies. Exposed to LLM consumers so they can
// interpret scores and tiers correctly.
const Methodology = `# AZ9 Research Methodology

AlphaDrop evaluates crypto projects for airdrop farming potential using the
AZ9 checklist. Every score and tier in tool output is produced against these
criteria.

## Checklist

1. **New Early Projects.** Is this a new account/project? Pre-token beats
   post-token; unlaunched beats launched.
2. **Narrative.** Does it fit a hot narrative (Restaking, L2, AI, Modular, ZK)?
3. **Smart Money.** Signs of Tier-1 VC backing (Paradigm, a16z, Binance) or
   top KOLs following.
4. **Events.** A Testnet, Mainnet, or Upgrade coming up.
5. **On-Chain Activity.** A clear path to interaction: Bridge, Swap, Stake.

## Scores

Scores are integers from 1 to 10:

- **8-10** strong farm candidate, meets nearly all criteria
- **6-7** worth farming with limited capital and time
- **1-5** skip or watch

## Tiers

A tracked project's tier is derived from its latest verdict score:

| Score | Tier |
|-------|------|
| 8-10  | S    |
| 6-7   | A    |
| 1-5   | B    |

Tier C is reserved for projects the user demotes manually.

## Tool output shapes

- ` + "`analyze_project`" + ` returns the full deep-dive report: tldr, overview,
  tech, funding, tokenomics, metrics, sentiment, competitors, risks, verdict,
  and cited sources.
- ` + "`quick_scan`" + ` returns a triage shape: narrative, score, signals
  (smartMoney, community, stage), verdict, and a farming strategy list.
- ` + "`funding_report`" + ` returns raise rounds with valuations and unlock
  terms, an investor tier analysis, and an investment verdict.
- ` + "`evaluate_candidates`" + ` returns one {name, isMatch, score, reason}
  object per candidate; isMatch is true when more than 2 criteria are met.

All sources in reports come from live web search at analysis time. Deep-dive
analyses and quick scans are cached for 24 hours per project name unless a
refresh is forced; funding reports are always fetched live.
`
