package risk

// ArtifactFormat identifies the exported weight file layout.
const ArtifactFormat = "nutricare-attention-lstm/v1"

// Artifact is the on-disk form of the trained network, exported layer by
// layer from the training checkpoint. Matrices are row-major with inputs
// along rows, matching the Keras kernel layout.
type Artifact struct {
	Format        string           `json:"format"`
	InputFeatures int              `json:"input_features"`
	Timesteps     int              `json:"timesteps"`
	LSTM          []LSTMWeights    `json:"lstm"`
	Attention     AttentionWeights `json:"attention"`
	Dense         []DenseWeights   `json:"dense"`
}

// LSTMWeights holds one sequence-returning LSTM layer. Gate blocks are
// ordered input, forget, cell, output.
type LSTMWeights struct {
	Units           int         `json:"units"`
	Kernel          [][]float64 `json:"kernel"`           // in x 4*units
	RecurrentKernel [][]float64 `json:"recurrent_kernel"` // units x 4*units
	Bias            []float64   `json:"bias"`             // 4*units
}

// AttentionWeights holds the additive attention layer.
type AttentionWeights struct {
	Units int         `json:"units"`
	W1    [][]float64 `json:"w1"` // in x units
	B1    []float64   `json:"b1"` // units
	W2    [][]float64 `json:"w2"` // units x 1
}

// DenseWeights holds a fully connected layer.
type DenseWeights struct {
	Units      int         `json:"units"`
	Activation string      `json:"activation"` // linear, relu, tanh or sigmoid
	Kernel     [][]float64 `json:"kernel"`     // in x units
	Bias       []float64   `json:"bias"`       // units
}
