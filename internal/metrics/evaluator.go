// Package metrics computes horizon quality maps: per-trace scores built
// from amplitude windows cut around the horizon surface. Support metrics
// compare every trace against a sampled set of reference traces; local
// metrics compare traces with their spatial neighborhood.
package metrics

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/RamySaleem/seismiqb/internal/geometry"
	"github.com/RamySaleem/seismiqb/internal/horizon"
)

// DefaultWindow is the depth window height cut around the horizon.
const DefaultWindow = 23

// Known metric names accepted by Evaluate.
var Names = []string{"support_corrs", "support_hellinger", "local_corrs", "window_rate"}

// Evaluator binds a geometry and a horizon and serves metric maps over
// the horizon's labeled traces.
type Evaluator struct {
	geom   geometry.Geometry
	hor    *horizon.Horizon
	log    *zap.Logger
	window int
	seed   int64

	depths  *geometry.Matrix // horizon depth per trace, NaN where unlabeled
	windows [][]float64      // amplitude window per trace, nil where unusable
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWindow overrides the depth window height.
func WithWindow(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithSeed fixes the support-trace sampling seed.
func WithSeed(seed int64) Option {
	return func(e *Evaluator) { e.seed = seed }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// NewEvaluator cuts the amplitude window around the horizon for every
// labeled live trace. Traces whose window runs off the cube are skipped.
func NewEvaluator(g geometry.Geometry, h *horizon.Horizon, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		geom:   g,
		hor:    h,
		log:    zap.NewNop(),
		window: DefaultWindow,
		seed:   42,
	}
	for _, opt := range opts {
		opt(e)
	}

	lens := g.Lens()
	e.depths = h.Matrix(g)
	e.windows = make([][]float64, lens[0]*lens[1])
	zero := g.ZeroTraces()

	type traceReader interface {
		Trace(i, x int) ([]float64, error)
	}
	tr, ok := g.(traceReader)
	if !ok {
		return nil, fmt.Errorf("metrics: geometry %s does not expose traces", g.ShortName())
	}

	half := e.window / 2
	usable := 0
	for i := 0; i < lens[0]; i++ {
		for x := 0; x < lens[1]; x++ {
			d := e.depths.At(i, x)
			if math.IsNaN(d) || zero.At(i, x) != 0 {
				continue
			}
			lo := int(d) - half
			hi := lo + e.window
			if lo < 0 || hi > lens[2] {
				continue
			}
			full, err := tr.Trace(i, x)
			if err != nil {
				return nil, fmt.Errorf("metrics: %w", err)
			}
			e.windows[i*lens[1]+x] = full[lo:hi]
			usable++
		}
	}
	if usable == 0 {
		return nil, fmt.Errorf("metrics: horizon %s labels no usable traces of %s", h.Name, g.ShortName())
	}
	e.log.Debug("evaluator ready",
		zap.String("cube", g.ShortName()),
		zap.String("horizon", h.Name),
		zap.Int("usable_traces", usable),
		zap.Int("window", e.window))
	return e, nil
}

// Evaluate computes the named metric map with the given parameters.
func (e *Evaluator) Evaluate(name string, params Params) (*geometry.Matrix, error) {
	switch name {
	case "support_corrs":
		return e.supportCorrs(params), nil
	case "support_hellinger":
		return e.supportHellinger(params), nil
	case "local_corrs":
		return e.localCorrs(params), nil
	case "window_rate":
		return e.windowRate(params), nil
	default:
		return nil, fmt.Errorf("metrics: unknown metric %q", name)
	}
}

func (e *Evaluator) window2d(i, x int) []float64 {
	return e.windows[i*e.geom.Lens()[1]+x]
}

// pickSupports samples n labeled traces with a deterministic seed.
func (e *Evaluator) pickSupports(n int) [][]float64 {
	var labeled [][]float64
	for _, w := range e.windows {
		if w != nil {
			labeled = append(labeled, w)
		}
	}
	if n >= len(labeled) {
		return labeled
	}
	rng := rand.New(rand.NewSource(e.seed))
	rng.Shuffle(len(labeled), func(a, b int) {
		labeled[a], labeled[b] = labeled[b], labeled[a]
	})
	return labeled[:n]
}

// aggregate folds per-support scores into one value.
func aggregate(scores []float64, agg string) float64 {
	defined := scores[:0]
	for _, s := range scores {
		if !math.IsNaN(s) {
			defined = append(defined, s)
		}
	}
	if len(defined) == 0 {
		return math.NaN()
	}
	switch agg {
	case "min":
		v := defined[0]
		for _, s := range defined[1:] {
			v = math.Min(v, s)
		}
		return v
	case "max":
		v := defined[0]
		for _, s := range defined[1:] {
			v = math.Max(v, s)
		}
		return v
	default: // mean
		return mean(defined)
	}
}

// supportCorrs correlates every trace window against sampled support
// windows. High values mean the horizon follows a consistent phase.
func (e *Evaluator) supportCorrs(params Params) *geometry.Matrix {
	supports := e.pickSupports(params.Int("supports", 20))
	agg := params.String("agg", "mean")
	return e.mapOverTraces(func(w []float64) float64 {
		scores := make([]float64, len(supports))
		for s, sup := range supports {
			scores[s] = pearson(w, sup)
		}
		return aggregate(scores, agg)
	})
}

// supportHellinger compares per-trace amplitude histograms against
// support histograms. Low values mean similar amplitude distributions.
func (e *Evaluator) supportHellinger(params Params) *geometry.Matrix {
	supports := e.pickSupports(params.Int("supports", 20))
	bins := params.Int("bins", 20)
	agg := params.String("agg", "mean")

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range e.windows {
		for _, v := range w {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	supHists := make([][]float64, len(supports))
	for s, sup := range supports {
		supHists[s] = histogram(sup, bins, lo, hi)
	}
	return e.mapOverTraces(func(w []float64) float64 {
		hist := histogram(w, bins, lo, hi)
		scores := make([]float64, len(supHists))
		for s, sh := range supHists {
			scores[s] = hellinger(hist, sh)
		}
		return aggregate(scores, agg)
	})
}

// localCorrs correlates every trace window with its labeled neighbors
// inside a kernel_size x kernel_size neighborhood.
func (e *Evaluator) localCorrs(params Params) *geometry.Matrix {
	kernel := params.Int("kernel_size", 3)
	agg := params.String("agg", "mean")
	k := kernel / 2
	lens := e.geom.Lens()

	out := geometry.NewMatrix(lens[0], lens[1])
	for i := 0; i < lens[0]; i++ {
		for x := 0; x < lens[1]; x++ {
			w := e.window2d(i, x)
			if w == nil {
				continue
			}
			var scores []float64
			for di := -k; di <= k; di++ {
				for dx := -k; dx <= k; dx++ {
					if di == 0 && dx == 0 {
						continue
					}
					ni, nx := i+di, x+dx
					if ni < 0 || ni >= lens[0] || nx < 0 || nx >= lens[1] {
						continue
					}
					nw := e.window2d(ni, nx)
					if nw == nil {
						continue
					}
					scores = append(scores, pearson(w, nw))
				}
			}
			if len(scores) > 0 {
				out.Set(i, x, aggregate(scores, agg))
			}
		}
	}
	return out
}

// windowRate marks traces whose horizon depth stays within a threshold
// of the locally smoothed surface: 1 inside the expected window, 0
// outside. The mean of the map is the glossary's window rate.
func (e *Evaluator) windowRate(params Params) *geometry.Matrix {
	kernel := params.Int("kernel_size", 11)
	threshold := params.Float("threshold", 5)

	smoothed := RunningMean(e.depths, kernel)
	out := geometry.NewMatrix(e.depths.Rows, e.depths.Cols)
	for i := 0; i < e.depths.Rows; i++ {
		for x := 0; x < e.depths.Cols; x++ {
			d, s := e.depths.At(i, x), smoothed.At(i, x)
			if math.IsNaN(d) || math.IsNaN(s) {
				continue
			}
			if math.Abs(d-s) <= threshold {
				out.Set(i, x, 1)
			} else {
				out.Set(i, x, 0)
			}
		}
	}
	return out
}

func (e *Evaluator) mapOverTraces(score func(w []float64) float64) *geometry.Matrix {
	lens := e.geom.Lens()
	out := geometry.NewMatrix(lens[0], lens[1])
	for i := 0; i < lens[0]; i++ {
		for x := 0; x < lens[1]; x++ {
			if w := e.window2d(i, x); w != nil {
				out.Set(i, x, score(w))
			}
		}
	}
	return out
}

// MeanScore is the NaN-skipping mean of a metric map, used for scalar
// reporting (window rate, mean correlation).
func MeanScore(m *geometry.Matrix) float64 {
	sum, n := 0.0, 0
	for _, v := range m.Data {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
