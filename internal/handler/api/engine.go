package api

import (
	"encoding/json"
	"fmt"
	"time"

	models "TradeSage/internal/domain/models"
	domrepo "TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/engine/quant"
	icache "TradeSage/internal/service/cache"
	"TradeSage/internal/service/metrics"
	"TradeSage/internal/service/ratelimit"
	"TradeSage/internal/services/arbiter"
	"TradeSage/internal/services/marketdata"
	"TradeSage/internal/usecase"
	xhttp "TradeSage/pkg/http"
	xlogger "TradeSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EngineHandler exposes the evaluation pipeline, the quant toolkit, and the
// paper portfolio over HTTP.
type EngineHandler struct {
	logger    *xlogger.Logger
	signals   *usecase.SignalService
	bars      *usecase.BarsUseCase
	ledger    dservice.Ledger
	agg       *marketdata.Aggregator
	usage     *arbiter.UsageTracker
	collector *usecase.TickCollector
	store     domrepo.DecisionStore
	rl        *ratelimit.Limiter
	cache     icache.BytesCache
}

func NewEngineHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalService,
	bars *usecase.BarsUseCase,
	ledger dservice.Ledger,
	agg *marketdata.Aggregator,
	usage *arbiter.UsageTracker,
	collector *usecase.TickCollector,
	store domrepo.DecisionStore,
) *EngineHandler {
	metrics.Register()
	return &EngineHandler{
		logger:    logger,
		signals:   signals,
		bars:      bars,
		ledger:    ledger,
		agg:       agg,
		usage:     usage,
		collector: collector,
		store:     store,
		rl:        ratelimit.New(),
	}
}

// SetCache injects a response cache for read-mostly endpoints.
func (h *EngineHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.POST("/evaluate", h.Evaluate)
	g.GET("/patterns", h.Patterns)
	g.GET("/scan", h.Scan)
	g.GET("/bars", h.Bars)
	g.GET("/portfolio", h.Portfolio)
	g.GET("/trades", h.Trades)
	g.GET("/decisions", h.Decisions)
	g.GET("/stats", h.Stats)

	q := g.Group("/quant")
	q.GET("/obi", h.SyntheticOBI)
	q.POST("/obi", h.OBI)
	q.POST("/var", h.VaR)
	q.GET("/trajectory", h.Trajectory)
}

// Signal runs the full evaluation pipeline from stored bars. Evaluations can
// reach the arbitration upstream, so the endpoint is rate limited per caller.
func (h *EngineHandler) Signal(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("signal").Observe(time.Since(start).Seconds()) }()

	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":signal", 5, 2) {
		return echo.NewHTTPError(429, "rate limited")
	}

	cacheKey := fmt.Sprintf("signal:%s:%s:%d", req.Ticker, req.TF, req.N)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	ev, err := h.signals.Evaluate(c.Request().Context(), *req)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("signal").Inc()
		h.logger.Warn("signal evaluation degraded",
			xlogger.String("ticker", req.Ticker),
			xlogger.Error(err))
		return xhttp.SuccessResponse(c, ev)
	}
	if h.cache != nil {
		if b, merr := json.Marshal(ev); merr == nil {
			if cerr := h.cache.SetBytes(cacheKey, b, 30*time.Second); cerr != nil {
				h.logger.Warn("signal cache set error", xlogger.Error(cerr))
			}
		}
	}
	return xhttp.SuccessResponse(c, ev)
}

// Evaluate runs the pipeline on caller-supplied snapshots.
func (h *EngineHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ev := h.signals.EvaluateSnapshot(c.Request().Context(), *req)
	return xhttp.SuccessResponse(c, ev)
}

// Patterns returns detected candlestick patterns and the aggregate verdict.
// Results are cached briefly; a bar window only changes once per bucket.
func (h *EngineHandler) Patterns(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues("patterns").Observe(time.Since(start).Seconds()) }()

	req := &models.PatternsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "patterns:" + req.Ticker + ":" + req.TF
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	matches, summary, err := h.signals.Patterns(c.Request().Context(), *req)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("patterns").Inc()
		h.logger.Error("patterns usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	payload := map[string]interface{}{
		"ticker":   req.Ticker,
		"patterns": matches,
		"summary":  summary,
	}
	if h.cache != nil {
		if b, err := json.Marshal(payload); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 15*time.Second); err != nil {
				h.logger.Warn("patterns cache set error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, payload)
}

// Scan sweeps the live watchlist with the pattern-only quick check.
func (h *EngineHandler) Scan(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":scan", 3, 1) {
		return echo.NewHTTPError(429, "rate limited")
	}
	tf := domrepo.NormalizeTimeframe(c.QueryParam("tf"))
	tickers := h.agg.Tickers()
	results := h.signals.QuickScan(c.Request().Context(), tickers, tf)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"scanned": len(tickers),
		"hits":    results,
	})
}

// Bars serves historical bars for a ticker and time range.
func (h *EngineHandler) Bars(c echo.Context) error {
	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("ticker required"))
	}
	now := time.Now().UTC()
	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Ticker:    ticker,
		From:      xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-time.Hour)),
		To:        xhttp.ParseTimeDefault(c.QueryParam("to"), now),
		Timeframe: domrepo.NormalizeTimeframe(c.QueryParam("tf")),
		Limit:     xhttp.ParseIntDefault(c.QueryParam("limit"), 0),
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Portfolio returns the paper ledger valued at last prints.
func (h *EngineHandler) Portfolio(c echo.Context) error {
	snap := h.ledger.Snapshot(h.agg.LastPrices())
	return xhttp.SuccessResponse(c, snap)
}

// Trades returns the persisted paper trade history for a ticker.
func (h *EngineHandler) Trades(c echo.Context) error {
	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("ticker required"))
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	trades, err := h.store.QueryTrades(c.Request().Context(), ticker, limit)
	if err != nil {
		h.logger.Error("query trades error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, trades)
}

// Decisions returns persisted final decisions for a ticker and time range.
func (h *EngineHandler) Decisions(c echo.Context) error {
	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("ticker required"))
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)

	decisions, err := h.store.QueryDecisions(c.Request().Context(), ticker, from, to, limit)
	if err != nil {
		h.logger.Error("query decisions error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, decisions)
}

// Stats reports stream health, portfolio value, and arbiter usage.
func (h *EngineHandler) Stats(c echo.Context) error {
	snap := h.ledger.Snapshot(h.agg.LastPrices())
	out := map[string]interface{}{
		"stream_connected": h.collector.IsConnected(),
		"tickers":          len(h.agg.Tickers()),
		"balance":          snap.Balance,
		"portfolio_value":  snap.PortfolioValue,
		"open_positions":   len(snap.Holdings),
		"closed_trades":    len(snap.ClosedTrades),
	}
	if h.usage != nil {
		out["arbiter_usage"] = h.usage.Stats()
	}
	return xhttp.SuccessResponse(c, out)
}

// OBI computes order book imbalance from a caller-supplied book.
func (h *EngineHandler) OBI(c echo.Context) error {
	req := &models.OBIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	obi := quant.OrderBookImbalance(req.Bids, req.Asks)
	bidVol, askVol := bookVolumes(req.Bids, req.Asks)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"obi":  obi,
		"vpin": quant.VPINProxy(bidVol, askVol, bidVol+askVol),
	})
}

func bookVolumes(bids, asks []models.PriceLevel) (bidVol, askVol float64) {
	for _, b := range bids {
		bidVol += b.Size
	}
	for _, a := range asks {
		askVol += a.Size
	}
	return bidVol, askVol
}

// SyntheticOBI fabricates a book around the ticker's last print and scores it.
func (h *EngineHandler) SyntheticOBI(c echo.Context) error {
	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("ticker required"))
	}
	price, ok := h.agg.LastPrice(ticker)
	if !ok {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("no prints for %s", ticker))
	}
	bids, asks := marketdata.SyntheticOrderBook(price)
	obi := quant.OrderBookImbalance(bids, asks)
	bidVol, askVol := bookVolumes(bids, asks)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"ticker": ticker,
		"price":  price,
		"bids":   bids,
		"asks":   asks,
		"obi":    obi,
		"vpin":   quant.VPINProxy(bidVol, askVol, bidVol+askVol),
	})
}

// VaR computes 95% parametric value at risk over a return sample.
func (h *EngineHandler) VaR(c echo.Context) error {
	req := &models.VaRRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pct, err := quant.VaRPercent(req.Returns)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}
	amount, err := quant.VaRAmount(req.Returns, req.PortfolioValue)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"var_percent": pct,
		"var_amount":  amount,
	})
}

// Trajectory returns per-minute execution buckets for an order.
func (h *EngineHandler) Trajectory(c echo.Context) error {
	req := &models.TrajectoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	buckets := quant.Trajectory(req.Shares, req.Minutes, quant.TrajectoryParams{})
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"shares":  req.Shares,
		"minutes": req.Minutes,
		"buckets": buckets,
	})
}
