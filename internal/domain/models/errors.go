package models

import "errors"

// Sentinel error kinds surfaced to callers instead of silent defaults.
var (
	// ErrInsufficientData signals too few bars or samples for an estimator.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUpstreamUnavailable signals a collaborator (market data, news,
	// arbitration) could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDegenerateFit signals a statistical fit that cannot be used
	// (non-mean-reverting series). Never fatal; gates are skipped.
	ErrDegenerateFit = errors.New("degenerate fit")
)
