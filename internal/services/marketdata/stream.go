package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	"TradeSage/pkg/logger"
)

// Stream implements a MarketStream over a quote-feed WebSocket that speaks
// the common subscribe/trade JSON dialect.
type Stream struct {
	apiKey         string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	tickers   []string
	connected bool
}

// New creates a websocket MarketStream.
func New(apiKey, websocketURL string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.MarketStream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("market stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("market stream connected")
	return nil
}

// Subscribe subscribes to the given tickers, remembering them for reconnects.
func (s *Stream) Subscribe(ctx context.Context, tickers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("market stream not connected")
	}
	s.tickers = append([]string(nil), tickers...)
	for _, t := range tickers {
		msg := map[string]string{"type": "subscribe", "symbol": t}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		s.log.Debug("market stream subscribed", logger.String("ticker", t))
	}
	return nil
}

type wsPrint struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsPrint `json:"data"`
}

// Read streams Tick events and errors. Slow consumers drop ticks rather than
// stalling the read loop.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("market stream conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("market stream read: %w", err)
				return
			}
			var m wsMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// ignore non-trade frames
				continue
			}
			if m.Type != "trade" {
				continue
			}
			for _, d := range m.Data {
				tick := &models.Tick{
					Ticker:    d.S,
					Price:     d.P,
					Volume:    int64(d.V),
					Timestamp: time.UnixMilli(d.T).UTC(),
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes, waits and re-establishes connection plus subscriptions.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	tickers := append([]string(nil), s.tickers...)
	s.mu.Unlock()
	return s.Subscribe(ctx, tickers)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
