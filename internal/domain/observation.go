package domain

import "time"

// PriceObservation is a single recorded price for one token, as written by a
// trading agent. Source of truth lives in the external store; observations
// are immutable once recorded.
type PriceObservation struct {
	Token     string    // token symbol, e.g. "WBNB"
	Trader    string    // trading agent that recorded the observation
	Timestamp time.Time // observation time (UTC)
	Price     float64   // quoted price at Timestamp
}

// DefaultTrader is the agent whose observations the pipelines consume.
const DefaultTrader = "BSC-AlgoTrader"
