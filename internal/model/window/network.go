// Package window implements the windowed-sequence lineage's regressor: a
// single-hidden-layer feed-forward network trained with stochastic gradient
// descent on mean squared error. Inputs are flattened look-back windows.
package window

import (
	"errors"
	"math/rand"

	"github.com/rs/zerolog"
)

// Config controls network shape and training.
type Config struct {
	HiddenSize   int     // hidden units
	Epochs       int     // full passes over the training set
	LearningRate float64 // SGD step size
	Seed         int64   // RNG seed for weight init and shuffling
}

// DefaultConfig mirrors the production training setup: a small hidden layer
// and enough epochs for the batch sizes this pipeline sees.
func DefaultConfig() Config {
	return Config{
		HiddenSize:   8,
		Epochs:       100,
		LearningRate: 0.01,
		Seed:         1,
	}
}

// Network is the fitted regressor. Exported fields make it serializable.
type Network struct {
	Config        Config
	InputSize     int
	HiddenWeights [][]float64 // [input][hidden]
	HiddenBiases  []float64
	OutputWeights []float64 // [hidden]
	OutputBias    float64

	log zerolog.Logger
}

// New creates an unfitted network. Weights are allocated at Fit time, when
// the input width is known.
func New(cfg Config, log zerolog.Logger) *Network {
	return &Network{Config: cfg, log: log}
}

// SetLogger attaches a logger to a network restored from a blob.
func (n *Network) SetLogger(log zerolog.Logger) {
	n.log = log
}

// Fit trains the network on row-major samples. Initialization and sample
// order derive from the configured seed, so refitting identical data is
// deterministic.
func (n *Network) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("window: training set empty or misaligned")
	}
	if n.Config.HiddenSize <= 0 || n.Config.Epochs <= 0 {
		return errors.New("window: invalid config")
	}

	rng := rand.New(rand.NewSource(n.Config.Seed))
	n.init(len(X[0]), rng)

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < n.Config.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		totalLoss := 0.0
		for _, i := range order {
			loss := n.step(X[i], y[i])
			totalLoss += loss
		}

		if epoch%10 == 0 || epoch == n.Config.Epochs-1 {
			n.log.Debug().
				Int("epoch", epoch).
				Float64("mse", totalLoss/float64(len(X))).
				Msg("training epoch")
		}
	}
	return nil
}

// Predict evaluates one flattened window.
func (n *Network) Predict(x []float64) float64 {
	if len(x) != n.InputSize {
		return 0
	}
	hidden := n.forwardHidden(x)
	out := n.OutputBias
	for j, h := range hidden {
		out += h * n.OutputWeights[j]
	}
	return out
}

func (n *Network) init(inputSize int, rng *rand.Rand) {
	n.InputSize = inputSize
	n.HiddenWeights = make([][]float64, inputSize)
	for i := range n.HiddenWeights {
		n.HiddenWeights[i] = make([]float64, n.Config.HiddenSize)
		for j := range n.HiddenWeights[i] {
			n.HiddenWeights[i][j] = (rng.Float64() - 0.5) * 0.1
		}
	}
	n.HiddenBiases = make([]float64, n.Config.HiddenSize)
	n.OutputWeights = make([]float64, n.Config.HiddenSize)
	for j := range n.OutputWeights {
		n.HiddenBiases[j] = (rng.Float64() - 0.5) * 0.1
		n.OutputWeights[j] = (rng.Float64() - 0.5) * 0.1
	}
	n.OutputBias = 0
}

// forwardHidden computes ReLU hidden activations.
func (n *Network) forwardHidden(x []float64) []float64 {
	hidden := make([]float64, n.Config.HiddenSize)
	for j := range hidden {
		sum := n.HiddenBiases[j]
		for i, v := range x {
			sum += v * n.HiddenWeights[i][j]
		}
		if sum > 0 {
			hidden[j] = sum
		}
	}
	return hidden
}

// step runs one forward/backward pass for a single sample and returns the
// squared error before the update.
func (n *Network) step(x []float64, target float64) float64 {
	hidden := n.forwardHidden(x)
	out := n.OutputBias
	for j, h := range hidden {
		out += h * n.OutputWeights[j]
	}

	err := out - target
	lr := n.Config.LearningRate

	// Hidden deltas use the pre-update output weights.
	deltas := make([]float64, len(hidden))
	for j := range hidden {
		if hidden[j] > 0 {
			deltas[j] = err * n.OutputWeights[j]
		}
	}

	for j, h := range hidden {
		n.OutputWeights[j] -= lr * err * h
	}
	n.OutputBias -= lr * err

	for j, delta := range deltas {
		if delta == 0 {
			continue
		}
		for i, v := range x {
			n.HiddenWeights[i][j] -= lr * delta * v
		}
		n.HiddenBiases[j] -= lr * delta
	}

	return err * err
}
