package pattern

import (
	"sort"

	"TradeSage/internal/domain/models"
)

// Detector scans OHLC bar windows for candlestick patterns. All checks are
// pure predicates over shape ratios; multiple patterns may co-occur in one
// window. Thresholds are fixed for reproducibility.
type Detector struct {
	smallBodyThreshold float64 // body/range below this is a doji body
	longShadowRatio    float64 // shadow must be this many times the body
	engulfingRatio     float64 // minimum current/prior body size ratio
	lookback           int
}

// NewDetector creates a detector with the standard thresholds.
func NewDetector() *Detector {
	return &Detector{
		smallBodyThreshold: 0.10,
		longShadowRatio:    2.0,
		engulfingRatio:     1.0,
		lookback:           20,
	}
}

// Detect analyzes a bar window (most recent bar last) and returns all matched
// patterns sorted by confidence, highest first. Windows shorter than 3 bars
// yield no matches.
func (d *Detector) Detect(window []models.Bar) []models.PatternMatch {
	if len(window) < 3 {
		return nil
	}
	recent := window
	if len(recent) > d.lookback {
		recent = recent[len(recent)-d.lookback:]
	}

	var out []models.PatternMatch
	out = append(out, d.singleBar(recent)...)
	out = append(out, d.twoBar(recent)...)
	out = append(out, d.threeBar(recent)...)
	out = append(out, d.fiveBar(recent)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func (d *Detector) singleBar(bars []models.Bar) []models.PatternMatch {
	var out []models.PatternMatch
	cur := bars[len(bars)-1]
	prev := bars[:len(bars)-1]
	if len(prev) > 5 {
		prev = prev[len(prev)-5:]
	}
	trend := classifyTrend(prev, trendDeadband)

	if m, ok := d.doji(cur); ok {
		out = append(out, m)
	}
	if m, ok := d.spinningTop(cur); ok {
		out = append(out, m)
	}
	if trend == trendDown {
		if m, ok := d.hammer(cur); ok {
			out = append(out, m)
		}
		if m, ok := d.invertedHammer(cur); ok {
			out = append(out, m)
		}
	}
	if trend == trendUp {
		if m, ok := d.hangingMan(cur); ok {
			out = append(out, m)
		}
		if m, ok := d.shootingStar(cur); ok {
			out = append(out, m)
		}
	}
	return out
}

func (d *Detector) doji(b models.Bar) (models.PatternMatch, bool) {
	if b.Range() == 0 {
		return models.PatternMatch{}, false
	}
	bodyRatio := b.Body() / b.Range()
	if bodyRatio >= d.smallBodyThreshold {
		return models.PatternMatch{}, false
	}
	if b.UpperShadow() <= b.Body()*0.5 || b.LowerShadow() <= b.Body()*0.5 {
		return models.PatternMatch{}, false
	}
	conf := 70 + (1-bodyRatio)*30
	return models.PatternMatch{
		Name:         "Doji",
		Category:     models.CategoryContinuation,
		Strength:     models.StrengthModerate,
		Confidence:   minf(90, conf),
		BarsConsumed: 1,
		Action:       models.ActionHold,
		Description:  "Indecision candle - potential trend reversal",
	}, true
}

func (d *Detector) spinningTop(b models.Bar) (models.PatternMatch, bool) {
	if b.Range() == 0 {
		return models.PatternMatch{}, false
	}
	bodyRatio := b.Body() / b.Range()
	if bodyRatio < d.smallBodyThreshold || bodyRatio > 0.30 {
		return models.PatternMatch{}, false
	}
	if b.UpperShadow()/b.Range() <= 0.20 || b.LowerShadow()/b.Range() <= 0.20 {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Spinning Top",
		Category:     models.CategoryContinuation,
		Strength:     models.StrengthWeak,
		Confidence:   60,
		BarsConsumed: 1,
		Action:       models.ActionHold,
		Description:  "Indecision - market equilibrium",
	}, true
}

// hammerShape checks the shared hammer geometry: body in the upper third,
// long lower shadow, negligible upper shadow.
func (d *Detector) hammerShape(b models.Bar) bool {
	if b.Range() == 0 || b.Body() == 0 {
		return false
	}
	bodyTop := maxf(b.Open, b.Close)
	if bodyTop < b.Low+b.Range()*0.67 {
		return false
	}
	if b.LowerShadow() < b.Body()*d.longShadowRatio {
		return false
	}
	return b.UpperShadow() <= b.Range()*0.15
}

// invertedHammerShape checks the mirror geometry: body in the lower third,
// long upper shadow, negligible lower shadow.
func (d *Detector) invertedHammerShape(b models.Bar) bool {
	if b.Range() == 0 || b.Body() == 0 {
		return false
	}
	bodyBottom := minf(b.Open, b.Close)
	if bodyBottom > b.Low+b.Range()*0.33 {
		return false
	}
	if b.UpperShadow() < b.Body()*d.longShadowRatio {
		return false
	}
	return b.LowerShadow() <= b.Range()*0.15
}

func (d *Detector) hammer(b models.Bar) (models.PatternMatch, bool) {
	if !d.hammerShape(b) {
		return models.PatternMatch{}, false
	}
	conf := 65 + minf(25, (b.LowerShadow()/b.Body()-2)*10)
	return models.PatternMatch{
		Name:         "Hammer",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthStrong,
		Confidence:   minf(90, conf),
		BarsConsumed: 1,
		Action:       models.ActionBuy,
		Description:  "Bullish reversal - buyers rejected lower prices",
	}, true
}

func (d *Detector) invertedHammer(b models.Bar) (models.PatternMatch, bool) {
	if !d.invertedHammerShape(b) {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Inverted Hammer",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthModerate,
		Confidence:   65,
		BarsConsumed: 1,
		Action:       models.ActionBuy,
		Description:  "Potential bullish reversal - needs confirmation",
	}, true
}

func (d *Detector) hangingMan(b models.Bar) (models.PatternMatch, bool) {
	if !d.hammerShape(b) {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Hanging Man",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthModerate,
		Confidence:   60,
		BarsConsumed: 1,
		Action:       models.ActionSell,
		Description:  "Bearish reversal warning in uptrend",
	}, true
}

func (d *Detector) shootingStar(b models.Bar) (models.PatternMatch, bool) {
	if !d.invertedHammerShape(b) {
		return models.PatternMatch{}, false
	}
	conf := 65 + minf(25, (b.UpperShadow()/b.Body()-2)*10)
	return models.PatternMatch{
		Name:         "Shooting Star",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthStrong,
		Confidence:   minf(90, conf),
		BarsConsumed: 1,
		Action:       models.ActionSell,
		Description:  "Bearish reversal - sellers rejected higher prices",
	}, true
}

func (d *Detector) twoBar(bars []models.Bar) []models.PatternMatch {
	if len(bars) < 2 {
		return nil
	}
	prev, cur := bars[len(bars)-2], bars[len(bars)-1]
	var out []models.PatternMatch
	if m, ok := d.bullishEngulfing(prev, cur); ok {
		out = append(out, m)
	}
	if m, ok := d.bearishEngulfing(prev, cur); ok {
		out = append(out, m)
	}
	if m, ok := d.piercingLine(prev, cur); ok {
		out = append(out, m)
	}
	if m, ok := d.darkCloudCover(prev, cur); ok {
		out = append(out, m)
	}
	return out
}

func (d *Detector) bullishEngulfing(prev, cur models.Bar) (models.PatternMatch, bool) {
	if !prev.IsBearish() || !cur.IsBullish() {
		return models.PatternMatch{}, false
	}
	if cur.Open >= prev.Close || cur.Close <= prev.Open {
		return models.PatternMatch{}, false
	}
	ratio := 2.0
	if prev.Body() > 0 {
		ratio = cur.Body() / prev.Body()
	}
	if ratio < d.engulfingRatio {
		return models.PatternMatch{}, false
	}
	conf := 70 + minf(20, (ratio-1)*10)
	return models.PatternMatch{
		Name:         "Bullish Engulfing",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthStrong,
		Confidence:   minf(90, conf),
		BarsConsumed: 2,
		Action:       models.ActionBuy,
		Description:  "Strong bullish reversal - buyers overwhelmed sellers",
	}, true
}

func (d *Detector) bearishEngulfing(prev, cur models.Bar) (models.PatternMatch, bool) {
	if !prev.IsBullish() || !cur.IsBearish() {
		return models.PatternMatch{}, false
	}
	if cur.Open <= prev.Close || cur.Close >= prev.Open {
		return models.PatternMatch{}, false
	}
	ratio := 2.0
	if prev.Body() > 0 {
		ratio = cur.Body() / prev.Body()
	}
	if ratio < d.engulfingRatio {
		return models.PatternMatch{}, false
	}
	conf := 70 + minf(20, (ratio-1)*10)
	return models.PatternMatch{
		Name:         "Bearish Engulfing",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthStrong,
		Confidence:   minf(90, conf),
		BarsConsumed: 2,
		Action:       models.ActionSell,
		Description:  "Strong bearish reversal - sellers overwhelmed buyers",
	}, true
}

func (d *Detector) piercingLine(prev, cur models.Bar) (models.PatternMatch, bool) {
	if !prev.IsBearish() || !cur.IsBullish() {
		return models.PatternMatch{}, false
	}
	if cur.Open >= prev.Low {
		return models.PatternMatch{}, false
	}
	if cur.Close <= prev.Midpoint() {
		return models.PatternMatch{}, false
	}
	// A close at or beyond the prior open is a full engulf, not a piercing.
	if cur.Close >= prev.Open {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Piercing Line",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthModerate,
		Confidence:   70,
		BarsConsumed: 2,
		Action:       models.ActionBuy,
		Description:  "Bullish reversal - strong buying pressure",
	}, true
}

func (d *Detector) darkCloudCover(prev, cur models.Bar) (models.PatternMatch, bool) {
	if !prev.IsBullish() || !cur.IsBearish() {
		return models.PatternMatch{}, false
	}
	if cur.Open <= prev.High {
		return models.PatternMatch{}, false
	}
	if cur.Close >= prev.Midpoint() {
		return models.PatternMatch{}, false
	}
	if cur.Close <= prev.Open {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Dark Cloud Cover",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthModerate,
		Confidence:   70,
		BarsConsumed: 2,
		Action:       models.ActionSell,
		Description:  "Bearish reversal - strong selling pressure",
	}, true
}

func (d *Detector) threeBar(bars []models.Bar) []models.PatternMatch {
	if len(bars) < 3 {
		return nil
	}
	c1, c2, c3 := bars[len(bars)-3], bars[len(bars)-2], bars[len(bars)-1]
	var out []models.PatternMatch
	if m, ok := d.morningStar(c1, c2, c3); ok {
		out = append(out, m)
	}
	if m, ok := d.eveningStar(c1, c2, c3); ok {
		out = append(out, m)
	}
	if m, ok := d.threeWhiteSoldiers(c1, c2, c3); ok {
		out = append(out, m)
	}
	if m, ok := d.threeBlackCrows(c1, c2, c3); ok {
		out = append(out, m)
	}
	return out
}

func (d *Detector) morningStar(c1, c2, c3 models.Bar) (models.PatternMatch, bool) {
	if !c1.IsBearish() || c1.Body() < c1.Range()*0.30 {
		return models.PatternMatch{}, false
	}
	if c2.Body() > c1.Body()*0.5 {
		return models.PatternMatch{}, false
	}
	if !c3.IsBullish() || c3.Close < c1.Midpoint() {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Morning Star",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthStrong,
		Confidence:   80,
		BarsConsumed: 3,
		Action:       models.ActionBuy,
		Description:  "Strong bullish reversal pattern - trend change likely",
	}, true
}

func (d *Detector) eveningStar(c1, c2, c3 models.Bar) (models.PatternMatch, bool) {
	if !c1.IsBullish() || c1.Body() < c1.Range()*0.30 {
		return models.PatternMatch{}, false
	}
	if c2.Body() > c1.Body()*0.5 {
		return models.PatternMatch{}, false
	}
	if !c3.IsBearish() || c3.Close > c1.Midpoint() {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Evening Star",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthStrong,
		Confidence:   80,
		BarsConsumed: 3,
		Action:       models.ActionSell,
		Description:  "Strong bearish reversal pattern - trend change likely",
	}, true
}

func (d *Detector) threeWhiteSoldiers(c1, c2, c3 models.Bar) (models.PatternMatch, bool) {
	if !c1.IsBullish() || !c2.IsBullish() || !c3.IsBullish() {
		return models.PatternMatch{}, false
	}
	if !(c1.Close < c2.Close && c2.Close < c3.Close) {
		return models.PatternMatch{}, false
	}
	if c2.Open < c1.Open || c2.Open > c1.Close {
		return models.PatternMatch{}, false
	}
	if c3.Open < c2.Open || c3.Open > c2.Close {
		return models.PatternMatch{}, false
	}
	for _, c := range []models.Bar{c1, c2, c3} {
		if c.Range() > 0 && c.Body()/c.Range() < 0.40 {
			return models.PatternMatch{}, false
		}
	}
	return models.PatternMatch{
		Name:         "Three White Soldiers",
		Category:     models.CategoryBullish,
		Strength:     models.StrengthStrong,
		Confidence:   85,
		BarsConsumed: 3,
		Action:       models.ActionBuy,
		Description:  "Strong bullish continuation - sustained buying pressure",
	}, true
}

func (d *Detector) threeBlackCrows(c1, c2, c3 models.Bar) (models.PatternMatch, bool) {
	if !c1.IsBearish() || !c2.IsBearish() || !c3.IsBearish() {
		return models.PatternMatch{}, false
	}
	if !(c1.Close > c2.Close && c2.Close > c3.Close) {
		return models.PatternMatch{}, false
	}
	if c2.Open > c1.Open || c2.Open < c1.Close {
		return models.PatternMatch{}, false
	}
	if c3.Open > c2.Open || c3.Open < c2.Close {
		return models.PatternMatch{}, false
	}
	for _, c := range []models.Bar{c1, c2, c3} {
		if c.Range() > 0 && c.Body()/c.Range() < 0.40 {
			return models.PatternMatch{}, false
		}
	}
	return models.PatternMatch{
		Name:         "Three Black Crows",
		Category:     models.CategoryBearish,
		Strength:     models.StrengthStrong,
		Confidence:   85,
		BarsConsumed: 3,
		Action:       models.ActionSell,
		Description:  "Strong bearish continuation - sustained selling pressure",
	}, true
}

func (d *Detector) fiveBar(bars []models.Bar) []models.PatternMatch {
	if len(bars) < 5 {
		return nil
	}
	c := bars[len(bars)-5:]
	var out []models.PatternMatch
	if m, ok := d.risingThreeMethods(c); ok {
		out = append(out, m)
	}
	if m, ok := d.fallingThreeMethods(c); ok {
		out = append(out, m)
	}
	return out
}

func (d *Detector) risingThreeMethods(c []models.Bar) (models.PatternMatch, bool) {
	c1, c5 := c[0], c[4]
	if !c1.IsBullish() || !c5.IsBullish() {
		return models.PatternMatch{}, false
	}
	middle := c[1:4]
	bearish := 0
	for _, m := range middle {
		if m.IsBearish() {
			bearish++
		}
		if m.High > c1.High || m.Low < c1.Low {
			return models.PatternMatch{}, false
		}
	}
	if bearish < 2 {
		return models.PatternMatch{}, false
	}
	if c5.Close <= c1.Close {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Rising Three Methods",
		Category:     models.CategoryContinuation,
		Strength:     models.StrengthStrong,
		Confidence:   75,
		BarsConsumed: 5,
		Action:       models.ActionBuy,
		Description:  "Bullish continuation - consolidation before uptrend resumes",
	}, true
}

func (d *Detector) fallingThreeMethods(c []models.Bar) (models.PatternMatch, bool) {
	c1, c5 := c[0], c[4]
	if !c1.IsBearish() || !c5.IsBearish() {
		return models.PatternMatch{}, false
	}
	middle := c[1:4]
	bullish := 0
	for _, m := range middle {
		if m.IsBullish() {
			bullish++
		}
		if m.High > c1.High || m.Low < c1.Low {
			return models.PatternMatch{}, false
		}
	}
	if bullish < 2 {
		return models.PatternMatch{}, false
	}
	if c5.Close >= c1.Close {
		return models.PatternMatch{}, false
	}
	return models.PatternMatch{
		Name:         "Falling Three Methods",
		Category:     models.CategoryContinuation,
		Strength:     models.StrengthStrong,
		Confidence:   75,
		BarsConsumed: 5,
		Action:       models.ActionSell,
		Description:  "Bearish continuation - consolidation before downtrend resumes",
	}, true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
