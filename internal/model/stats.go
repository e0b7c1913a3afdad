package model

import "github.com/shopspring/decimal"

// WheelStats - live totals across every session
type WheelStats struct {
	TotalSpins  int64
	TotalBet    decimal.Decimal
	TotalPayout decimal.Decimal
	RTP         decimal.Decimal
	WindowRTP   decimal.Decimal
	WindowSize  int
	Slices      []SliceStats
}

// SliceStats - observed versus configured frequency of one slice
type SliceStats struct {
	Index    int
	Credit   int
	Hits     int64
	Expected float64
	Observed float64
}
