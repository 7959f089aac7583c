package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStockUpdateStrategy(t *testing.T) {
	s, ok := ParseStockUpdateStrategy(" add ")
	assert.True(t, ok)
	assert.Equal(t, StockAdd, s)

	_, ok = ParseStockUpdateStrategy("MULTIPLY")
	assert.False(t, ok)
	assert.False(t, StockUpdateStrategy("").Valid())
}

func TestStockUpdateStrategy_Apply(t *testing.T) {
	tests := []struct {
		strategy StockUpdateStrategy
		current  int64
		qty      int64
		want     int64
	}{
		{StockReplace, 7, 5, 5},
		{StockAdd, 7, 2, 9},
		{StockSubtract, 7, 2, 5},
		//下限は見ない
		{StockSubtract, 1, 3, -2},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Apply(tt.current, tt.qty))
		})
	}
}
