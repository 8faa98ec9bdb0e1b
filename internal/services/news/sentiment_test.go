package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"TradeSage/internal/domain/models"
)

func TestAnalyzeEmpty(t *testing.T) {
	a := NewKeywordAnalyzer()
	snap := a.Analyze(nil)
	assert.Zero(t, snap.TotalArticles)
	assert.Zero(t, snap.BullishCount)
}

func TestAnalyzeClassifiesArticles(t *testing.T) {
	a := NewKeywordAnalyzer()
	articles := []models.NewsArticle{
		{Title: "Shares surge after earnings beat", Summary: "strong growth and record high"},
		{Title: "Stock plunges on guidance cut", Summary: "analysts downgrade after weak quarter"},
		{Title: "Company schedules annual meeting", Summary: "shareholders to vote in June"},
	}
	snap := a.Analyze(articles)

	assert.Equal(t, 3, snap.TotalArticles)
	assert.Equal(t, 1, snap.BullishCount)
	assert.Equal(t, 1, snap.BearishCount)
	assert.Equal(t, 1, snap.NeutralCount)
	assert.Equal(t, "bullish", articles[0].Sentiment)
	assert.Equal(t, "bearish", articles[1].Sentiment)
	assert.Equal(t, "neutral", articles[2].Sentiment)
}

func TestAnalyzeTiedKeywordsIsNeutral(t *testing.T) {
	a := NewKeywordAnalyzer()
	articles := []models.NewsArticle{
		{Title: "Gains for some, losses for others", Summary: "rally meets decline"},
	}
	snap := a.Analyze(articles)
	assert.Equal(t, 1, snap.NeutralCount+snap.BullishCount+snap.BearishCount)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", stripTags("<p>hello <b>world</b></p>"))
	assert.Equal(t, "plain", stripTags("plain"))
}

func TestParsePubDate(t *testing.T) {
	ts := parsePubDate("Mon, 02 Jan 2006 15:04:05 -0700")
	assert.False(t, ts.IsZero())
	assert.Equal(t, 2006, ts.Year())
	assert.True(t, parsePubDate("garbage").IsZero())
}

func TestDeduplicate(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Same headline", Published: time.Now()},
		{Title: "same headline", Published: time.Now()},
		{Title: "Different headline", Published: time.Now()},
	}
	out := deduplicate(articles)
	assert.Len(t, out, 2)
}

func TestFilterByTicker(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "AAPL hits new high", Summary: ""},
		{Title: "Oil prices fall", Summary: "energy markets"},
	}
	out := filterByTicker(articles, "AAPL")
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Title, "AAPL")
}
