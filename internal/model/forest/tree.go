package forest

import "sort"

// growTree builds a regression tree over the samples selected by idx.
// Splits greedily minimize the weighted sum of child variances; recursion
// stops at max depth, at the minimum split size, or when no split improves.
func growTree(X [][]float64, y []float64, idx []int, depth int, cfg Config) *Node {
	node := &Node{Value: meanTarget(y, idx), Feature: -1}

	if depth >= cfg.MaxDepth || len(idx) < cfg.MinSamplesSplit {
		return node
	}

	feature, threshold, ok := bestSplit(X, y, idx)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = growTree(X, y, left, depth+1, cfg)
	node.Right = growTree(X, y, right, depth+1, cfg)
	return node
}

// bestSplit scans every feature for the threshold with the lowest weighted
// child sum of squared errors. Reports ok=false when all candidate splits
// leave a child empty or nothing beats the parent.
func bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	if len(idx) < 2 {
		return 0, 0, false
	}

	parentSSE := sumSquaredError(y, idx)
	bestScore := parentSSE
	width := len(X[idx[0]])

	order := make([]int, len(idx))
	for f := 0; f < width; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		// Incremental split evaluation: move samples left one at a time
		// and score via sum/sum-of-squares decomposition.
		var lSum, lSq float64
		rSum, rSq := targetSums(y, order)
		lN := 0
		rN := len(order)

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			lSum += v
			lSq += v * v
			rSum -= v
			rSq -= v * v
			lN++
			rN--

			// Cannot split between equal feature values.
			if X[order[k]][f] == X[order[k+1]][f] {
				continue
			}

			score := (lSq - lSum*lSum/float64(lN)) + (rSq - rSum*rSum/float64(rN))
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = (X[order[k]][f] + X[order[k+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func meanTarget(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func targetSums(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		v := y[i]
		sum += v
		sq += v * v
	}
	return sum, sq
}

func sumSquaredError(y []float64, idx []int) float64 {
	mean := meanTarget(y, idx)
	sse := 0.0
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}
