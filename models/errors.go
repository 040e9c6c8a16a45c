package models

import "errors"

var (
	// ErrInvalidParameters is returned when a pricing input fails validation,
	// before any simulation or closed-form computation runs.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInsufficientSamples is returned when a standard error is requested
	// for fewer than two simulated paths.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrUpstreamDataUnavailable is returned when no market-data provider
	// could resolve a quote for a symbol.
	ErrUpstreamDataUnavailable = errors.New("upstream data unavailable")
)
