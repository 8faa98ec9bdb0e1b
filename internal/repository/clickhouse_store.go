package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradeSage/internal/domain/models"
	domrepo "TradeSage/internal/domain/repository"
	pkgch "TradeSage/pkg/clickhouse"
	applogger "TradeSage/pkg/logger"
)

const (
	decisionsTable = "tradesage.decisions"
	tradesTable    = "tradesage.paper_trades"
)

var schemaStmts = []string{
	`CREATE DATABASE IF NOT EXISTS tradesage`,
	`CREATE TABLE IF NOT EXISTS tradesage.decisions (
        ts        DateTime64(3),
        ticker    LowCardinality(String),
        action    LowCardinality(String),
        quantity  Int32,
        price     Float64,
        reasoning String
    ) ENGINE = MergeTree ORDER BY (ticker, ts)`,
	`CREATE TABLE IF NOT EXISTS tradesage.paper_trades (
        ts         DateTime64(3),
        ticker     LowCardinality(String),
        action     LowCardinality(String),
        quantity   Int32,
        price      Float64,
        total      Float64,
        profit     Float64,
        confidence Int32,
        reasoning  String
    ) ENGINE = MergeTree ORDER BY (ticker, ts)`,
	`CREATE TABLE IF NOT EXISTS tradesage.rt_bars_1s (
        bucket DateTime,
        ticker LowCardinality(String),
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        vol    Int64
    ) ENGINE = ReplacingMergeTree ORDER BY (ticker, bucket)`,
	`CREATE TABLE IF NOT EXISTS tradesage.rt_bars_1m (
        bucket DateTime,
        ticker LowCardinality(String),
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        vol    Int64
    ) ENGINE = ReplacingMergeTree ORDER BY (ticker, bucket)`,
}

// CHDecisionStore persists final decisions and executed paper trades in
// ClickHouse.
type CHDecisionStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHDecisionStore(ch *pkgch.Client) *CHDecisionStore {
	return &CHDecisionStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHDecisionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHDecisionStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, schemaStmts)
}

func (s *CHDecisionStore) StoreDecision(ctx context.Context, d *models.FinalDecision) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (ts, ticker, action, quantity, price, reasoning) VALUES (?, ?, ?, ?, ?, ?)",
		decisionsTable)
	_, err := s.db.ExecContext(ctx, q,
		d.Timestamp, d.Ticker, string(d.Action), d.Quantity, d.Price, d.Reasoning)
	if err != nil {
		return fmt.Errorf("store decision: %w", err)
	}
	return nil
}

func (s *CHDecisionStore) StoreDecisionBatch(ctx context.Context, decisions []*models.FinalDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(decisions); start += chunkSize {
		end := start + chunkSize
		if end > len(decisions) {
			end = len(decisions)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, d := range decisions[start:end] {
			if d == nil || d.Ticker == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, d.Timestamp, d.Ticker, string(d.Action), d.Quantity, d.Price, d.Reasoning)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, ticker, action, quantity, price, reasoning) VALUES %s",
			decisionsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store decision batch: %w", err)
		}
	}
	return nil
}

func (s *CHDecisionStore) StoreTrade(ctx context.Context, tr *models.TradeRecord) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (ts, ticker, action, quantity, price, total, profit, confidence, reasoning) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		tradesTable)
	_, err := s.db.ExecContext(ctx, q,
		tr.Timestamp, tr.Ticker, string(tr.Action), tr.Quantity, tr.Price, tr.Total, tr.Profit, tr.Confidence, tr.Reasoning)
	if err != nil {
		return fmt.Errorf("store trade: %w", err)
	}
	return nil
}

func (s *CHDecisionStore) QueryDecisions(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.FinalDecision, error) {
	q := fmt.Sprintf(
		"SELECT ts, ticker, action, quantity, price, reasoning FROM %s WHERE ticker = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?",
		decisionsTable)
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to, limit)
	if err != nil {
		s.logErr("query decisions", ticker, err)
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []*models.FinalDecision
	for rows.Next() {
		var d models.FinalDecision
		var action string
		if err := rows.Scan(&d.Timestamp, &d.Ticker, &action, &d.Quantity, &d.Price, &d.Reasoning); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Action = models.Action(action)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *CHDecisionStore) QueryTrades(ctx context.Context, ticker string, limit int) ([]*models.TradeRecord, error) {
	q := fmt.Sprintf(
		"SELECT ts, ticker, action, quantity, price, total, profit, confidence, reasoning FROM %s WHERE ticker = ? ORDER BY ts DESC LIMIT ?",
		tradesTable)
	rows, err := s.db.QueryContext(ctx, q, ticker, limit)
	if err != nil {
		s.logErr("query trades", ticker, err)
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []*models.TradeRecord
	for rows.Next() {
		var tr models.TradeRecord
		var action string
		if err := rows.Scan(&tr.Timestamp, &tr.Ticker, &action, &tr.Quantity, &tr.Price, &tr.Total, &tr.Profit, &tr.Confidence, &tr.Reasoning); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		tr.Action = models.Action(action)
		out = append(out, &tr)
	}
	return out, rows.Err()
}

func (s *CHDecisionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHDecisionStore) Close() error {
	return nil // connection owned by pkg client
}

func (s *CHDecisionStore) logErr(op, ticker string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse "+op+" error",
		applogger.String("ticker", ticker),
		applogger.Error(err))
}

// CHBarStore serves historical bars from ClickHouse, for backfill and for
// queries beyond the in-memory aggregator window.
type CHBarStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) GetBars(ctx context.Context, ticker string, from, to time.Time, tf domrepo.Timeframe) ([]models.Bar, error) {
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(
		"SELECT bucket, open, high, low, close, vol FROM %s WHERE ticker = ? AND bucket >= ? AND bucket <= ? ORDER BY bucket ASC",
		table)
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars error",
				applogger.String("ticker", ticker),
				applogger.String("tf", string(tf)),
				applogger.Error(err))
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 256)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *CHBarStore) GetLatestNBars(ctx context.Context, ticker string, n int, tf domrepo.Timeframe) ([]models.Bar, error) {
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(
		"SELECT bucket, open, high, low, close, vol FROM %s WHERE ticker = ? ORDER BY bucket DESC LIMIT ?",
		table)
	rows, err := s.db.QueryContext(ctx, q, ticker, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_bars error",
				applogger.String("ticker", ticker),
				applogger.String("tf", string(tf)),
				applogger.Error(err))
		}
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Bar, 0, n)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func (s *CHBarStore) GetPriceSeries(ctx context.Context, ticker string, n int, tf domrepo.Timeframe) ([]float64, error) {
	bars, err := s.GetLatestNBars(ctx, ticker, n, tf)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out, nil
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1s:
		return "tradesage.rt_bars_1s", nil
	case domrepo.TF1m, domrepo.TF5m:
		// 5m folds onto the 1m table; the aggregator handles true 5m buckets
		return "tradesage.rt_bars_1m", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
