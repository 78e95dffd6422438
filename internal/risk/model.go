// Package risk runs the pretrained attention-LSTM mortality-risk model.
package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/ai-nutricare/backend/internal/features"
	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourceModel)

// Model is an immutable, inference-only network. It is safe for concurrent
// use.
type Model struct {
	lstm      []lstmLayer
	attention *Attention
	dense     []denseLayer
	timesteps int
	width     int
}

type lstmLayer struct {
	units     int
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      []float64
}

type denseLayer struct {
	kernel     *mat.Dense
	bias       []float64
	activation func(float64) float64
}

// LoadModel reads an exported artifact. Callers treat an error as fatal:
// the service cannot score patients without the model.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}

	m, err := NewModel(a)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	logger.Info("loaded risk model", "path", path, "lstm_layers", len(m.lstm), "dense_layers", len(m.dense))
	return m, nil
}

// NewModel validates the artifact's shapes and builds the network.
func NewModel(a Artifact) (*Model, error) {
	if a.Format != "" && a.Format != ArtifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q", a.Format)
	}
	if a.InputFeatures != 0 && a.InputFeatures != features.NumFeatures {
		return nil, fmt.Errorf("model expects %d features, pipeline produces %d", a.InputFeatures, features.NumFeatures)
	}
	if a.Timesteps != 0 && a.Timesteps != features.Timesteps {
		return nil, fmt.Errorf("model expects %d timesteps, pipeline produces %d", a.Timesteps, features.Timesteps)
	}

	m := &Model{timesteps: features.Timesteps, width: features.NumFeatures}
	in := features.NumFeatures

	for i, lw := range a.LSTM {
		kernel, err := toDense(fmt.Sprintf("lstm[%d].kernel", i), lw.Kernel, in, 4*lw.Units)
		if err != nil {
			return nil, err
		}
		recurrent, err := toDense(fmt.Sprintf("lstm[%d].recurrent_kernel", i), lw.RecurrentKernel, lw.Units, 4*lw.Units)
		if err != nil {
			return nil, err
		}
		if len(lw.Bias) != 4*lw.Units {
			return nil, fmt.Errorf("lstm[%d].bias: got %d values, want %d", i, len(lw.Bias), 4*lw.Units)
		}
		m.lstm = append(m.lstm, lstmLayer{units: lw.Units, kernel: kernel, recurrent: recurrent, bias: lw.Bias})
		in = lw.Units
	}

	att, err := newAttention(a.Attention, in)
	if err != nil {
		return nil, err
	}
	m.attention = att

	if len(a.Dense) == 0 {
		return nil, fmt.Errorf("model has no output layer")
	}
	for i, dw := range a.Dense {
		kernel, err := toDense(fmt.Sprintf("dense[%d].kernel", i), dw.Kernel, in, dw.Units)
		if err != nil {
			return nil, err
		}
		if len(dw.Bias) != dw.Units {
			return nil, fmt.Errorf("dense[%d].bias: got %d values, want %d", i, len(dw.Bias), dw.Units)
		}
		act, err := activation(dw.Activation)
		if err != nil {
			return nil, fmt.Errorf("dense[%d]: %w", i, err)
		}
		m.dense = append(m.dense, denseLayer{kernel: kernel, bias: dw.Bias, activation: act})
		in = dw.Units
	}
	if in != 1 {
		return nil, fmt.Errorf("output layer has %d units, want 1", in)
	}
	return m, nil
}

// Predict returns the risk score in [0,1] for one patient tensor.
func (m *Model) Predict(ctx context.Context, t features.Tensor) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x := mat.NewDense(m.timesteps, m.width, nil)
	for i, row := range t {
		x.SetRow(i, row[:])
	}

	seq := x
	for _, l := range m.lstm {
		seq = l.forward(seq)
	}

	out, _ := m.attention.Forward(seq)
	for _, l := range m.dense {
		out = l.forward(out)
	}

	score := out[0]
	if math.IsNaN(score) {
		return 0, fmt.Errorf("model produced NaN")
	}
	return math.Min(1, math.Max(0, score)), nil
}

// forward runs the layer over a (timesteps x in) sequence and returns every
// hidden state.
func (l lstmLayer) forward(x *mat.Dense) *mat.Dense {
	steps, _ := x.Dims()
	u := l.units

	var xk mat.Dense
	xk.Mul(x, l.kernel)

	out := mat.NewDense(steps, u, nil)
	h := mat.NewDense(1, u, nil)
	c := make([]float64, u)
	z := make([]float64, 4*u)
	var hr mat.Dense

	for t := 0; t < steps; t++ {
		hr.Mul(h, l.recurrent)
		for j := range z {
			z[j] = xk.At(t, j) + hr.At(0, j) + l.bias[j]
		}
		for j := 0; j < u; j++ {
			in := sigmoid(z[j])
			forget := sigmoid(z[u+j])
			cell := math.Tanh(z[2*u+j])
			output := sigmoid(z[3*u+j])

			c[j] = forget*c[j] + in*cell
			hv := output * math.Tanh(c[j])
			h.Set(0, j, hv)
			out.Set(t, j, hv)
		}
	}
	return out
}

func (l denseLayer) forward(in []float64) []float64 {
	x := mat.NewDense(1, len(in), in)
	var y mat.Dense
	y.Mul(x, l.kernel)

	_, n := y.Dims()
	out := make([]float64, n)
	for j := range out {
		out[j] = l.activation(y.At(0, j) + l.bias[j])
	}
	return out
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case "", "linear":
		return func(v float64) float64 { return v }, nil
	case "relu":
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case "tanh":
		return math.Tanh, nil
	case "sigmoid":
		return sigmoid, nil
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
