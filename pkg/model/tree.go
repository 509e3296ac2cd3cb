package model

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// treeNode is one node of a regression tree. Leaf nodes carry the
// predicted value; internal nodes route on Feature <= Threshold.
// Nodes are stored as a flat array so trees serialize as plain JSON.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// predict walks the tree for one preprocessed feature vector.
func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Leaf {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

type treeBuilder struct {
	x              [][]float64
	targets        []float64
	maxDepth       int
	minSamplesLeaf int
	nodes          []treeNode
}

// fitTree grows a depth-limited regression tree on the given rows
// using exact greedy splits that maximize variance reduction. The fit
// is fully deterministic: features are scanned in order and ties keep
// the first candidate.
func fitTree(x [][]float64, targets []float64, maxDepth, minSamplesLeaf int) regressionTree {
	b := &treeBuilder{
		x:              x,
		targets:        targets,
		maxDepth:       maxDepth,
		minSamplesLeaf: minSamplesLeaf,
	}
	rows := make([]int, len(x))
	for i := range rows {
		rows[i] = i
	}
	b.grow(rows, 0)
	return regressionTree{Nodes: b.nodes}
}

// grow appends the subtree for rows and returns its root index.
func (b *treeBuilder) grow(rows []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Leaf: true, Value: b.mean(rows)})

	if depth >= b.maxDepth || len(rows) < 2*b.minSamplesLeaf {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	b.nodes[idx].Leaf = false
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[idx].Left = leftIdx
	b.nodes[idx].Right = rightIdx
	return idx
}

func (b *treeBuilder) mean(rows []int) float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = b.targets[r]
	}
	return stat.Mean(vals, nil)
}

// bestSplit scans every feature for the split with the largest
// reduction in sum of squared errors. Returns ok=false when no split
// satisfies the leaf-size constraint or improves on the parent.
func (b *treeBuilder) bestSplit(rows []int) (feature int, threshold float64, ok bool) {
	const minGain = 1e-12

	n := len(rows)
	var sum, sumSq float64
	for _, r := range rows {
		y := b.targets[r]
		sum += y
		sumSq += y * y
	}
	parentSSE := sumSq - sum*sum/float64(n)

	bestGain := minGain
	order := make([]int, n)

	for f := 0; f < len(b.x[0]); f++ {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool {
			return b.x[order[i]][f] < b.x[order[j]][f]
		})

		var leftSum, leftSumSq float64
		for i := 0; i < n-1; i++ {
			y := b.targets[order[i]]
			leftSum += y
			leftSumSq += y * y

			// Only split between distinct feature values.
			cur, next := b.x[order[i]][f], b.x[order[i+1]][f]
			if cur == next {
				continue
			}

			nl := i + 1
			nr := n - nl
			if nl < b.minSamplesLeaf || nr < b.minSamplesLeaf {
				continue
			}

			rightSum := sum - leftSum
			rightSumSq := sumSq - leftSumSq
			leftSSE := leftSumSq - leftSum*leftSum/float64(nl)
			rightSSE := rightSumSq - rightSum*rightSum/float64(nr)

			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = cur + (next-cur)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
