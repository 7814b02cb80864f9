package domain

import "time"

// DailyPrice is one close observation for one symbol.
// Corresponds to the daily_prices table in ClickHouse.
type DailyPrice struct {
	Symbol string    // ticker symbol
	Date   time.Time // trade date (calendar day, UTC midnight)
	Close  float64   // closing price
}

// PriceSeries is an ordered sequence of (date, close) for one symbol.
// Dates are strictly increasing with no duplicates. The core never
// mutates a series supplied by a caller.
type PriceSeries struct {
	Symbol string
	Dates  []time.Time
	Closes []float64
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Dates) }
