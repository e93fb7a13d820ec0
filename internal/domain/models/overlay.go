package models

// OverlayKind names an optional dataset merged onto the roster.
type OverlayKind string

const (
	OverlayQuote      OverlayKind = "quote"
	OverlayIndicators OverlayKind = "indicators"
)

// OverlayStatus is the per-request outcome of one overlay.
type OverlayStatus string

const (
	OverlayOK      OverlayStatus = "ok"
	OverlayFailed  OverlayStatus = "failed"
	OverlaySkipped OverlayStatus = "skipped"
)

// Result carries the outcome of one overlay fetch. A failed fetch keeps
// its error here instead of propagating it.
type Result[T any] struct {
	Requested bool
	Rows      []T
	Err       error
}

// Ok wraps rows of a successful fetch.
func Ok[T any](rows []T) Result[T] {
	return Result[T]{Requested: true, Rows: rows}
}

// Failed wraps a fetch error.
func Failed[T any](err error) Result[T] {
	return Result[T]{Requested: true, Err: err}
}

// Present reports whether the rows may be merged.
func (r Result[T]) Present() bool {
	return r.Requested && r.Err == nil
}

func (r Result[T]) Status() OverlayStatus {
	switch {
	case !r.Requested:
		return OverlaySkipped
	case r.Err != nil:
		return OverlayFailed
	default:
		return OverlayOK
	}
}

// Overlays groups the optional datasets of one aggregation.
type Overlays struct {
	Quotes     Result[QuoteRow]
	Indicators Result[IndicatorRow]
}
