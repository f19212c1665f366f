package model

import (
	"strings"
	"time"
)

func normUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Signal is the closed directional taxonomy assigned to an asset mention.
type Signal string

const (
	SignalBuy    Signal = "BUY"
	SignalSell   Signal = "SELL"
	SignalHedge  Signal = "HEDGE"
	SignalWatch  Signal = "WATCH"
	SignalClosed Signal = "CLOSED"
)

// NormalizeSignal coerces an arbitrary oracle-produced signal value into the
// closed taxonomy. The legacy "HOLD" tag maps to WATCH; anything else
// unrecognized defaults to BUY.
func NormalizeSignal(raw string) Signal {
	switch Signal(normUpper(raw)) {
	case SignalBuy, SignalSell, SignalHedge, SignalWatch, SignalClosed:
		return Signal(normUpper(raw))
	}
	if normUpper(raw) == "HOLD" {
		return SignalWatch
	}
	return SignalBuy
}

// Timeframe is the coarse horizon bucket used to compute expiry offsets.
type Timeframe string

const (
	TimeframeShort Timeframe = "SHORT" // expires 7 days after recommendation
	TimeframeMid   Timeframe = "MID"   // 28 days
	TimeframeLong  Timeframe = "LONG"  // 90 days
)

// ExpiryOffset returns the fixed expiry offset for the timeframe.
// Unknown values fall back to the MID offset.
func (t Timeframe) ExpiryOffset() time.Duration {
	switch t {
	case TimeframeShort:
		return 7 * 24 * time.Hour
	case TimeframeLong:
		return 90 * 24 * time.Hour
	default:
		return 28 * 24 * time.Hour
	}
}

// NormalizeTimeframe coerces a raw timeframe value, defaulting to MID.
func NormalizeTimeframe(raw string) Timeframe {
	switch Timeframe(normUpper(raw)) {
	case TimeframeShort, TimeframeMid, TimeframeLong:
		return Timeframe(normUpper(raw))
	}
	return TimeframeMid
}

// ReviewStatus is the pending-review lifecycle state.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// RecommendationStatus tracks a recommendation after it leaves the pipeline.
// The pipeline only ever creates ACTIVE recommendations; the remaining states
// belong to downstream tracking.
type RecommendationStatus string

const (
	RecommendationActive  RecommendationStatus = "ACTIVE"
	RecommendationExpired RecommendationStatus = "EXPIRED"
	RecommendationClosed  RecommendationStatus = "CLOSED"
)
