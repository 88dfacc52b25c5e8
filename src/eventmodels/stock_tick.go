package eventmodels

import (
	"fmt"
	"math"
	"time"
)

// StockTick is one normalized trade from the market data stream.
type StockTick struct {
	Symbol    StockSymbol `json:"symbol"`
	Price     float64     `json:"price"`
	Timestamp int64       `json:"timestamp"` // epoch milliseconds
}

func NewStockTick(symbol StockSymbol, price float64, timestamp int64) StockTick {
	return StockTick{
		Symbol:    NewStockSymbol(string(symbol)),
		Price:     price,
		Timestamp: timestamp,
	}
}

func (t StockTick) Time() time.Time {
	return time.UnixMilli(t.Timestamp).UTC()
}

func (t StockTick) Validate() error {
	if t.Symbol == "" {
		return NewParameterError("symbol", "must not be empty")
	}

	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return NewParameterError("price", fmt.Sprintf("must be positive and finite, got %v", t.Price))
	}

	if t.Timestamp <= 0 {
		return NewParameterError("timestamp", fmt.Sprintf("must be positive epoch milliseconds, got %d", t.Timestamp))
	}

	return nil
}
