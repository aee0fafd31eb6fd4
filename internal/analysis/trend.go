package analysis

import "github.com/finlens/backend/internal/model"

// computeTrend fits a least-squares line over the series and classifies
// its direction. Returns a stable zero trend for fewer than two points.
// ChangePct compares the last value to the first and is zero when the
// first value is zero.
func computeTrend(series []float64) model.Trend {
	if len(series) < 2 {
		return model.Trend{Direction: model.TrendStable}
	}

	slope, _ := leastSquares(series)

	changePct := 0.0
	if first := series[0]; first != 0 {
		changePct = (series[len(series)-1] - first) / abs(first) * 100
	}

	direction := model.TrendStable
	switch {
	case slope > 0:
		direction = model.TrendIncreasing
	case slope < 0:
		direction = model.TrendDecreasing
	}

	return model.Trend{Direction: direction, ChangePct: changePct, Slope: slope}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
