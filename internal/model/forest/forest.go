// Package forest implements a bagged ensemble of depth-limited regression
// trees, the regressor behind the lagged-feature lineage.
package forest

import (
	"errors"
	"math/rand"
)

// Config controls ensemble shape. The zero value is not usable; call
// DefaultConfig.
type Config struct {
	Trees           int   // number of bootstrap trees
	MaxDepth        int   // maximum tree depth
	MinSamplesSplit int   // minimum samples to attempt a split
	Seed            int64 // RNG seed for bootstrap sampling
}

// DefaultConfig mirrors the ensemble shape used in production training runs.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		Seed:            1,
	}
}

// Forest is the fitted ensemble. Exported fields make the state serializable.
type Forest struct {
	Config Config
	Roots  []*Node
}

// Node is one regression-tree node. Leaves carry the mean target of their
// samples; internal nodes split on Feature <= Threshold.
type Node struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *Node
	Right     *Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// New creates an unfitted forest.
func New(cfg Config) *Forest {
	return &Forest{Config: cfg}
}

// Fit trains the ensemble: each tree grows on a bootstrap resample of the
// training set with a greedy variance-reduction split search.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("forest: training set empty or misaligned")
	}
	if f.Config.Trees <= 0 {
		return errors.New("forest: tree count must be positive")
	}

	rng := rand.New(rand.NewSource(f.Config.Seed))
	n := len(X)

	f.Roots = make([]*Node, f.Config.Trees)
	for t := 0; t < f.Config.Trees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		f.Roots[t] = growTree(X, y, idx, 0, f.Config)
	}
	return nil
}

// Predict averages the per-tree predictions.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Roots) == 0 {
		return 0
	}
	sum := 0.0
	for _, root := range f.Roots {
		sum += evalTree(root, x)
	}
	return sum / float64(len(f.Roots))
}

func evalTree(n *Node, x []float64) float64 {
	for !n.IsLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}
