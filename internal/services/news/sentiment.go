package news

import (
	"strings"

	"TradeSage/internal/domain/models"
)

// Keyword lexicons for quick sentiment classification without an AI call.
// Matching is plain lowercase substring search over title plus summary.
var (
	bullishKeywords = []string{
		"surge", "soar", "jump", "rally", "gain", "rise", "climb", "up",
		"beat", "exceed", "outperform", "bullish", "buy", "upgrade",
		"record high", "all-time high", "breakthrough", "strong",
		"growth", "profit", "earnings beat", "revenue up", "positive",
		"expansion", "acquisition", "partnership", "deal", "contract",
		"innovation", "launch", "success", "momentum", "optimistic",
	}
	bearishKeywords = []string{
		"drop", "fall", "plunge", "sink", "crash", "decline", "down",
		"miss", "disappoint", "underperform", "bearish", "sell",
		"downgrade", "cut", "warning", "weak", "loss", "deficit",
		"layoff", "lawsuit", "investigation", "probe", "scandal",
		"recession", "concern", "risk", "trouble", "struggle",
		"miss estimates", "guidance cut", "pessimistic", "slump",
	}
)

// KeywordAnalyzer classifies headlines by lexicon matching. Stateless.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze labels each article by its dominant keyword side and aggregates the
// counts. Articles are labeled in place via the Sentiment field.
func (a *KeywordAnalyzer) Analyze(articles []models.NewsArticle) models.SentimentSnapshot {
	snap := models.SentimentSnapshot{TotalArticles: len(articles)}
	for i := range articles {
		text := strings.ToLower(articles[i].Title + " " + articles[i].Summary)
		bull := countMatches(text, bullishKeywords)
		bear := countMatches(text, bearishKeywords)
		switch {
		case bull > bear:
			articles[i].Sentiment = "bullish"
			snap.BullishCount++
		case bear > bull:
			articles[i].Sentiment = "bearish"
			snap.BearishCount++
		default:
			articles[i].Sentiment = "neutral"
			snap.NeutralCount++
		}
	}
	return snap
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
