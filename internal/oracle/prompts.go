package oracle

import "fmt"

// classifyPrompt builds the phase 1 relevance prompt. Ambiguous content must
// classify as not relevant: a wrongly-skipped post costs one signal, a
// wrongly-extracted one costs reviewer time.
func classifyPrompt(text string) string {
	return fmt.Sprintf(`You are a financial content classifier. Determine whether the following social media post contains actionable investment content (stock picks, portfolio updates, trade journals, buy/sell signals, company or earnings analysis).

Post:
"""%s"""

Respond ONLY in valid JSON:
{
  "is_relevant": true or false,
  "post_type": "single_pick" | "portfolio_update" | "trade_journal" | "earnings_review" | "company_analysis" | "market_commentary" | "educational" | "lifestyle" | "other",
  "reason": "Brief explanation"
}

Guidelines:
- "single_pick": the post focuses on one stock/asset
- "portfolio_update": the post lists multiple held positions
- "trade_journal": the post documents executed trades
- "earnings_review" / "company_analysis": analysis of a specific company
- "market_commentary": general market views without specific tickers
- "educational" / "lifestyle" / "other": not actionable investment content
- When in doubt, set is_relevant to false. Precision beats recall: only clear, actionable investment content is relevant.`, text)
}

// extractPrompt builds the phase 2 asset-extraction prompt.
func extractPrompt(text, postType string) string {
	return fmt.Sprintf(`Role: You are an expert financial analyst. Extract EVERY stock/asset mentioned in this post (classified as %q) with its individual investment signal.

CRITICAL RULES:
1. Respond ONLY in valid JSON
2. Extract EVERY ticker mentioned (NVDA, TSLA, MU, QQQ, BTC, ...)
3. Each asset gets its OWN signal; a single post can have BOTH buys AND sells
4. Signal vocabulary:
   - BUY: long, bullish, adding, holding as a conviction position
   - SELL: trimming, exiting, bearish, short
   - HEDGE: puts, spreads, or other positions opened to offset risk
   - WATCH: watching, neutral, waiting for an entry
   - CLOSED: a position the author reports as fully closed
5. For portfolio updates listing holdings by category, the default signal is BUY
6. Convert non-US listings to their suffixed form (e.g., "8299.TW", market "TW")

Post:
"""%s"""

JSON output:
{
  "assets": [
    {
      "symbol": "TICKER",
      "category": "sector or theme (optional)",
      "signal": "BUY" | "SELL" | "HEDGE" | "WATCH" | "CLOSED",
      "market": "US" | "TW" | "JP" | "CRYPTO" | "OTHER",
      "note": "specific context for this asset"
    }
  ],
  "overall_sentiment": "Bullish" | "Bearish" | "Mixed" | "Neutral",
  "confidence": 0.0-1.0,
  "summary": "brief analysis summary",
  "key_points": ["point 1", "point 2"]
}`, postType, text)
}
