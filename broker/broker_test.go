package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceMid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bid  float64
		ask  float64
		want float64
	}{
		{"simple", 1.0, 3.0, 2.0},
		{"same", 2.5, 2.5, 2.5},
		{"fx", 1.0849, 1.0851, 1.0850},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Price{Bid: tt.bid, Ask: tt.ask}
			assert.InDelta(t, tt.want, p.Mid(), 1e-9)
			assert.InDelta(t, tt.ask-tt.bid, p.Spread(), 1e-9)
		})
	}
}
