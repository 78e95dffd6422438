package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Attention weights timesteps by a learned relevance score:
//
//	h = tanh(x·W1 + b1)
//	e = h·W2
//	alpha = softmax over timesteps of e
//	context = Σ alpha_t · x_t
type Attention struct {
	w1 *mat.Dense
	b1 []float64
	w2 *mat.Dense
}

func newAttention(w AttentionWeights, in int) (*Attention, error) {
	w1, err := toDense("attention.w1", w.W1, in, w.Units)
	if err != nil {
		return nil, err
	}
	w2, err := toDense("attention.w2", w.W2, w.Units, 1)
	if err != nil {
		return nil, err
	}
	if len(w.B1) != w.Units {
		return nil, fmt.Errorf("attention.b1: got %d values, want %d", len(w.B1), w.Units)
	}
	return &Attention{w1: w1, b1: w.B1, w2: w2}, nil
}

// Forward returns the context vector and the per-timestep weights for a
// (timesteps x features) sequence.
func (a *Attention) Forward(x *mat.Dense) (context, alpha []float64) {
	steps, width := x.Dims()

	var h mat.Dense
	h.Mul(x, a.w1)
	h.Apply(func(_, j int, v float64) float64 {
		return math.Tanh(v + a.b1[j])
	}, &h)

	var e mat.Dense
	e.Mul(&h, a.w2)

	scores := make([]float64, steps)
	for t := range scores {
		scores[t] = e.At(t, 0)
	}
	alpha = softmax(scores)

	context = make([]float64, width)
	for t := 0; t < steps; t++ {
		for f := 0; f < width; f++ {
			context[f] += alpha[t] * x.At(t, f)
		}
	}
	return context, alpha
}

func softmax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	peak := xs[0]
	for _, v := range xs[1:] {
		peak = math.Max(peak, v)
	}
	sum := 0.0
	for i, v := range xs {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func toDense(name string, rows [][]float64, r, c int) (*mat.Dense, error) {
	if len(rows) != r {
		return nil, fmt.Errorf("%s: got %d rows, want %d", name, len(rows), r)
	}
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d", name, i, len(row), c)
		}
		data = append(data, row...)
	}
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%s: empty matrix", name)
	}
	return mat.NewDense(r, c, data), nil
}
