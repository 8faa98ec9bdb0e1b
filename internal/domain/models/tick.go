package models

import "time"

// Tick is one streamed market print, the raw input bars are built from.
type Tick struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
