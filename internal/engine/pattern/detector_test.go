package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
)

func bar(o, h, l, c float64) models.Bar {
	return models.Bar{Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

// downtrend returns five descending bearish bars ending near 102.
func downtrend() []models.Bar {
	return []models.Bar{
		bar(111, 111.2, 109.5, 110),
		bar(109, 109.2, 107.5, 108),
		bar(107, 107.2, 105.5, 106),
		bar(105, 105.2, 103.5, 104),
		bar(103, 103.2, 101.5, 102),
	}
}

func uptrend() []models.Bar {
	return []models.Bar{
		bar(99, 100.3, 98.8, 100),
		bar(100, 101.3, 99.8, 101),
		bar(101, 102.3, 100.8, 102),
		bar(102, 103.3, 101.8, 103),
		bar(103, 104.3, 102.9, 104),
	}
}

func names(matches []models.PatternMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

func TestDetectTooFewBars(t *testing.T) {
	d := NewDetector()
	assert.Nil(t, d.Detect(nil))
	assert.Nil(t, d.Detect([]models.Bar{bar(100, 101, 99, 100.5), bar(100.5, 101, 99, 100)}))
}

func TestDetectHammerInDowntrend(t *testing.T) {
	d := NewDetector()
	window := append(downtrend(), bar(101, 102, 98, 101.8))

	matches := d.Detect(window)
	require.Contains(t, names(matches), "Hammer")

	var hammer models.PatternMatch
	for _, m := range matches {
		if m.Name == "Hammer" {
			hammer = m
		}
	}
	assert.Equal(t, models.CategoryBullish, hammer.Category)
	assert.Equal(t, models.ActionBuy, hammer.Action)
	assert.Equal(t, models.StrengthStrong, hammer.Strength)
	// lower shadow 3.0 vs body 0.8: 65 + (3.75-2)*10 = 82.5
	assert.InDelta(t, 82.5, hammer.Confidence, 0.01)
}

func TestHammerNotDetectedWithoutDowntrend(t *testing.T) {
	d := NewDetector()
	window := append(uptrend(), bar(101, 102, 98, 101.8))
	assert.NotContains(t, names(d.Detect(window)), "Hammer")
}

func TestDetectShootingStarInUptrend(t *testing.T) {
	d := NewDetector()
	window := append(uptrend(), bar(104.8, 107, 104.4, 104.5))

	matches := d.Detect(window)
	require.Contains(t, names(matches), "Shooting Star")
	star := matches[0] // long upper shadow caps confidence at 90
	assert.Equal(t, "Shooting Star", star.Name)
	assert.InDelta(t, 90, star.Confidence, 0.01)
	assert.Equal(t, models.ActionSell, star.Action)
}

func TestDetectDoji(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 101, 99, 100.5),
		bar(100.5, 101.2, 99.8, 100.3),
		bar(100, 101.5, 98.9, 100.2),
	}
	matches := d.Detect(window)
	require.Contains(t, names(matches), "Doji")
	for _, m := range matches {
		if m.Name == "Doji" {
			assert.Equal(t, models.CategoryContinuation, m.Category)
			assert.InDelta(t, 90, m.Confidence, 0.01) // capped
		}
	}
}

func TestDojiRejectsFlatBar(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 101, 99, 100.5),
		bar(100.5, 101.2, 99.8, 100.3),
		bar(100, 100, 100, 100), // zero range
	}
	assert.NotContains(t, names(d.Detect(window)), "Doji")
}

func TestDetectBullishEngulfing(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 101.2, 99.8, 101),
		bar(102, 102.5, 99.5, 100),  // bearish, body 2
		bar(99.5, 103, 99.4, 102.5), // bullish, body 3 engulfs it
	}
	matches := d.Detect(window)
	require.Contains(t, names(matches), "Bullish Engulfing")
	for _, m := range matches {
		if m.Name == "Bullish Engulfing" {
			// ratio 1.5: 70 + 5
			assert.InDelta(t, 75, m.Confidence, 0.01)
			assert.Equal(t, 2, m.BarsConsumed)
		}
	}
}

func TestDetectMorningStar(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(105, 105.5, 99.5, 100),    // long bearish
		bar(99.8, 100.6, 99.4, 100.2), // small body gap
		bar(100.5, 104.5, 100.2, 104), // bullish close above c1 midpoint
	}
	matches := d.Detect(window)
	require.Len(t, matches, 1)
	assert.Equal(t, "Morning Star", matches[0].Name)
	assert.InDelta(t, 80, matches[0].Confidence, 0.01)
	assert.Equal(t, 3, matches[0].BarsConsumed)
}

func TestMorningStarRejectsLargeMiddleBody(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(105, 105.5, 99.5, 100),
		bar(99.8, 103.5, 99.4, 103.2), // middle body too large
		bar(100.5, 104.5, 100.2, 104),
	}
	assert.NotContains(t, names(d.Detect(window)), "Morning Star")
}

func TestDetectThreeWhiteSoldiers(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 102.4, 99.8, 102),
		bar(101, 103.8, 100.8, 103.5),
		bar(103, 105.3, 102.8, 105),
	}
	matches := d.Detect(window)
	require.Contains(t, names(matches), "Three White Soldiers")
	assert.InDelta(t, 85, matches[0].Confidence, 0.01)
}

func TestDetectThreeBlackCrows(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(105, 105.3, 102.6, 103),
		bar(104, 104.2, 101.2, 101.5),
		bar(102, 102.2, 99.7, 100),
	}
	matches := d.Detect(window)
	require.Contains(t, names(matches), "Three Black Crows")
}

func TestDetectRisingThreeMethods(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 103.5, 99.8, 103),
		bar(102.8, 103.0, 101.8, 102),
		bar(102.2, 102.4, 101.2, 101.5),
		bar(101.7, 101.9, 100.8, 101),
		bar(101.2, 104.2, 101.0, 104),
	}
	matches := d.Detect(window)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "Rising Three Methods", m.Name)
	assert.Equal(t, models.CategoryContinuation, m.Category)
	assert.Equal(t, models.ActionBuy, m.Action)
	assert.Equal(t, 5, m.BarsConsumed)
}

func TestRisingThreeMethodsRejectsBreakout(t *testing.T) {
	d := NewDetector()
	window := []models.Bar{
		bar(100, 103.5, 99.8, 103),
		bar(102.8, 104.0, 101.8, 102), // high breaches c1 range
		bar(102.2, 102.4, 101.2, 101.5),
		bar(101.7, 101.9, 100.8, 101),
		bar(101.2, 104.2, 101.0, 104),
	}
	assert.NotContains(t, names(d.Detect(window)), "Rising Three Methods")
}

func TestDetectSortsByConfidence(t *testing.T) {
	d := NewDetector()
	window := append(downtrend(), bar(101, 102, 98, 101.8))
	matches := d.Detect(window)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, trendDown, classifyTrend(downtrend(), trendDeadband))
	assert.Equal(t, trendUp, classifyTrend(uptrend(), trendDeadband))

	flat := []models.Bar{bar(100, 100.5, 99.5, 100), bar(100, 100.8, 99.6, 100.5)}
	assert.Equal(t, trendSideways, classifyTrend(flat, trendDeadband))
	assert.Equal(t, trendSideways, classifyTrend(flat[:1], trendDeadband))
}
