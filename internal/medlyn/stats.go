package medlyn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Keys of the ordered statistics view.
const (
	KeyG1       = "g1"
	KeyG1StdErr = "g1_se"
	KeyG0       = "g0"
	KeyG0StdErr = "g0_se"
	KeyRSquared = "rsq"
	KeyNumPts   = "num_pts"
	KeyRMSE     = "rmse_val"
)

// exactFitTol is the agreement below which constant predictions count as
// reproducing constant observations.
const exactFitTol = 1e-9

// Statistics summarises a successful fit.
type Statistics struct {
	G0        float64
	G0StdErr  float64
	G1        float64
	G1StdErr  float64
	RSquared  float64
	NumPoints int
	RMSE      float64
}

// Entry is one named statistic.
type Entry struct {
	Key   string
	Value float64
}

// Entries returns the statistics in report order.
func (s Statistics) Entries() []Entry {
	return []Entry{
		{KeyG1, s.G1},
		{KeyG1StdErr, s.G1StdErr},
		{KeyG0, s.G0},
		{KeyG0StdErr, s.G0StdErr},
		{KeyRSquared, s.RSquared},
		{KeyNumPts, float64(s.NumPoints)},
		{KeyRMSE, s.RMSE},
	}
}

// ComputeStatistics evaluates the fitted model over t. res must come from a
// successful MinimizeParameters call on the same table.
//
// r² is the squared Pearson correlation of observed and predicted values.
// When either series is constant the correlation is undefined: r² is then 1
// if the predictions reproduce the observations and NaN otherwise.
func (f *Fitter) ComputeStatistics(res Result, t Table) (Statistics, error) {
	c, err := f.roles.resolve(t)
	if err != nil {
		return Statistics{}, err
	}
	pred := Predict(c.vpd, c.assim, c.co2, res.G0, res.G1)

	return Statistics{
		G0:        res.G0,
		G0StdErr:  res.G0StdErr,
		G1:        res.G1,
		G1StdErr:  res.G1StdErr,
		RSquared:  rSquared(c.obs, pred),
		NumPoints: t.Len(),
		RMSE:      RMSE(c.obs, pred),
	}, nil
}

func rSquared(obs, pred []float64) float64 {
	if len(obs) < 2 {
		return math.NaN()
	}
	if constant(obs) || constant(pred) {
		if floats.EqualApprox(obs, pred, exactFitTol) {
			return 1
		}
		return math.NaN()
	}
	r := stat.Correlation(obs, pred, nil)
	return r * r
}

func constant(x []float64) bool {
	return floats.Max(x) == floats.Min(x)
}

// RMSE returns the root-mean-square difference of x and y.
func RMSE(x, y []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Distance(x, y, 2) / math.Sqrt(float64(len(x)))
}
