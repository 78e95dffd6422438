package features

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/stat"

	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourceModel)

// Tensor is a single-batch model input: Timesteps rows of standardized
// features. Its shape is (1, Timesteps, NumFeatures).
type Tensor [Timesteps]Vector

// Shape returns the (batch, timesteps, features) dimensions.
func (Tensor) Shape() [3]int {
	return [3]int{1, Timesteps, NumFeatures}
}

// Stats holds per-feature standardization parameters.
type Stats struct {
	Mean Vector
	Std  Vector
}

// IdentityStats leaves values unchanged: zero mean, unit deviation.
func IdentityStats() Stats {
	var s Stats
	for i := range s.Std {
		s.Std[i] = 1
	}
	return s
}

// Standardize returns (v - mean) / std.
func (s Stats) Standardize(v Vector) Vector {
	var out Vector
	for i := range v {
		out[i] = (v[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

// Tensor replicates v across the window and standardizes each row. A single
// observation is presented to the model as a constant history.
func (s Stats) Tensor(v Vector) Tensor {
	row := s.Standardize(v)
	var t Tensor
	for i := range t {
		t[i] = row
	}
	return t
}

// FromRows computes population mean and standard deviation per feature.
// Zero-variance features get a divisor of 1.
func FromRows(rows [][]float64) (Stats, error) {
	if len(rows) == 0 {
		return IdentityStats(), nil
	}

	var s Stats
	col := make([]float64, len(rows))
	for j := 0; j < NumFeatures; j++ {
		for i, r := range rows {
			if len(r) != NumFeatures {
				return Stats{}, fmt.Errorf("row %d has %d features, want %d", i, len(r), NumFeatures)
			}
			col[i] = r[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s, nil
}

// LoadStats computes Stats from a reference dataset stored as a NumPy array
// of shape (samples, timesteps, features) or (rows, features). A missing
// file is not an error: identity statistics are returned.
func LoadStats(path string) (Stats, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("reference dataset not found, using zero mean and unit variance", "path", path)
		return IdentityStats(), nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("open reference dataset: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return Stats{}, fmt.Errorf("read npy header: %w", err)
	}

	shape := r.Header.Descr.Shape
	if len(shape) < 2 || shape[len(shape)-1] != NumFeatures {
		return Stats{}, fmt.Errorf("reference dataset shape %v: last dimension must be %d", shape, NumFeatures)
	}
	total := 1
	for _, d := range shape {
		total *= d
	}

	flat, err := readFloats(r, total)
	if err != nil {
		return Stats{}, err
	}

	rows := make([][]float64, 0, total/NumFeatures)
	for i := 0; i+NumFeatures <= len(flat); i += NumFeatures {
		rows = append(rows, flat[i:i+NumFeatures])
	}

	s, err := FromRows(rows)
	if err != nil {
		return Stats{}, err
	}
	logger.Info("loaded normalization statistics", "path", path, "rows", len(rows), "shape", fmt.Sprint(shape))
	return s, nil
}

func readFloats(r *npyio.Reader, n int) ([]float64, error) {
	switch r.Header.Descr.Type {
	case "<f4", "|f4", "f4":
		raw := make([]float32, n)
		if err := r.Read(&raw); err != nil {
			return nil, fmt.Errorf("read float32 data: %w", err)
		}
		out := make([]float64, n)
		for i, v := range raw {
			out[i] = float64(v)
		}
		return out, nil
	default:
		raw := make([]float64, n)
		if err := r.Read(&raw); err != nil {
			return nil, fmt.Errorf("read float64 data: %w", err)
		}
		return raw, nil
	}
}
