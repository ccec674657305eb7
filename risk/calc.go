package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Spec carries the per-instrument trading constraints sizing needs. It is
// fetched fresh from the broker for every request, never cached.
type Spec struct {
	PointSize  float64 // smallest price increment
	PointValue float64 // account currency per point per 1.0 volume
	VolumeMin  float64
	VolumeMax  float64
	VolumeStep float64
}

type Inputs struct {
	Balance     float64
	RiskPercent float64 // 1.0 == 1%
	Entry       *float64
	StopLoss    *float64
	Spec        Spec
}

type Result struct {
	Volume     float64
	StopPoints float64 // distance between entry and stop, in points
	RiskAmount float64 // account currency put at risk if the stop is hit
}

// ErrZeroStopDistance means entry and stop loss are the same price, which
// makes the implied risk per unit of volume undefined.
var ErrZeroStopDistance = errors.New("risk: stop loss equals entry")

var hundred = decimal.NewFromInt(100)

// Calculate sizes a position so that hitting the stop loss costs at most
// RiskPercent of the balance.
//
// When entry or stop is missing there is nothing to size against and the
// instrument's minimum volume is returned; that is a deliberate fallback,
// not an error. Otherwise the raw volume is truncated down to a multiple
// of VolumeStep and clamped into [VolumeMin, VolumeMax]. Truncation, never
// rounding: the sized position must not exceed the risk budget.
//
// The whole computation runs in decimal. Price distances like
// 1.1000-1.0950 are not exact in float64, and the resulting hair below
// the true quotient would be truncated into a full missing volume step:
// a trade that sizes to exactly 2.00 lots must not come out as 1.99.
func Calculate(in Inputs) (Result, error) {
	if in.Entry == nil || in.StopLoss == nil {
		return Result{Volume: in.Spec.VolumeMin}, nil
	}

	entry := decimal.NewFromFloat(*in.Entry)
	stop := decimal.NewFromFloat(*in.StopLoss)
	pointSize := decimal.NewFromFloat(in.Spec.PointSize)
	pointValue := decimal.NewFromFloat(in.Spec.PointValue)

	riskAmount := decimal.NewFromFloat(in.Balance).
		Mul(decimal.NewFromFloat(in.RiskPercent)).
		Div(hundred)
	stopPoints := entry.Sub(stop).Abs().Div(pointSize)
	if stopPoints.IsZero() {
		return Result{}, ErrZeroStopDistance
	}

	raw := riskAmount.Div(stopPoints.Mul(pointValue))
	volume := quantize(raw, decimal.NewFromFloat(in.Spec.VolumeStep))

	volumeMin := decimal.NewFromFloat(in.Spec.VolumeMin)
	volumeMax := decimal.NewFromFloat(in.Spec.VolumeMax)
	if volume.LessThan(volumeMin) {
		volume = volumeMin
	}
	if volume.GreaterThan(volumeMax) {
		volume = volumeMax
	}

	vol, _ := volume.Float64()
	points, _ := stopPoints.Float64()
	amount, _ := riskAmount.Float64()
	return Result{
		Volume:     vol,
		StopPoints: points,
		RiskAmount: amount,
	}, nil
}

// quantize truncates v down to the nearest multiple of step.
func quantize(v, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return v
	}
	return v.Div(step).Floor().Mul(step)
}
