package forecast

import (
	"math"
	"math/rand"
)

// Training hyperparameters. The seed is fixed so retraining on identical
// rows always yields identical trees.
const (
	trainingSeed    = 42
	treeCount       = 50
	maxTreeDepth    = 16
	minSamplesSplit = 2
)

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	value     float64
}

// Forest is a bagged ensemble of CART trees. In regression mode predictions
// are averaged across trees; in classification mode each leaf votes 0 or 1
// and the majority wins.
type Forest struct {
	trees    []*treeNode
	classify bool
}

// trainForest fits treeCount trees, each on a bootstrap sample drawn from a
// deterministically seeded source.
func trainForest(features [][]float64, labels []float64, classify bool) *Forest {
	rng := rand.New(rand.NewSource(trainingSeed))
	n := len(labels)

	trees := make([]*treeNode, 0, treeCount)
	for t := 0; t < treeCount; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		trees = append(trees, buildTree(features, labels, sample, 0, classify))
	}

	return &Forest{trees: trees, classify: classify}
}

// Predict evaluates a single feature vector. Classification forests return
// exactly 0 or 1.
func (f *Forest) Predict(x []float64) float64 {
	var sum float64
	for _, tree := range f.trees {
		sum += predictTree(tree, x)
	}
	mean := sum / float64(len(f.trees))

	if f.classify {
		if mean >= 0.5 {
			return 1
		}
		return 0
	}
	return mean
}

// PredictClass is a convenience for classification forests.
func (f *Forest) PredictClass(x []float64) bool {
	return f.Predict(x) >= 0.5
}

func predictTree(node *treeNode, x []float64) float64 {
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func buildTree(features [][]float64, labels []float64, sample []int, depth int, classify bool) *treeNode {
	if depth >= maxTreeDepth || len(sample) < minSamplesSplit || isPure(labels, sample) {
		return leafNode(labels, sample, classify)
	}

	feature, threshold, ok := bestSplit(features, labels, sample, classify)
	if !ok {
		return leafNode(labels, sample, classify)
	}

	var left, right []int
	for _, i := range sample {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(features, labels, left, depth+1, classify),
		right:     buildTree(features, labels, right, depth+1, classify),
	}
}

func leafNode(labels []float64, sample []int, classify bool) *treeNode {
	if len(sample) == 0 {
		return &treeNode{leaf: true}
	}

	if classify {
		var positives int
		for _, i := range sample {
			if labels[i] >= 0.5 {
				positives++
			}
		}
		value := 0.0
		if positives*2 >= len(sample) {
			value = 1.0
		}
		return &treeNode{leaf: true, value: value}
	}

	var sum float64
	for _, i := range sample {
		sum += labels[i]
	}
	return &treeNode{leaf: true, value: sum / float64(len(sample))}
}

// bestSplit exhaustively searches midpoints between adjacent feature values
// for the split minimizing summed child impurity. The per-user datasets are
// tiny, so the quadratic scan is fine.
func bestSplit(features [][]float64, labels []float64, sample []int, classify bool) (int, float64, bool) {
	bestScore := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	featureCount := len(features[sample[0]])
	left := make([]int, 0, len(sample))
	right := make([]int, 0, len(sample))

	for f := 0; f < featureCount; f++ {
		values := distinctValues(features, sample, f)
		for i := 0; i+1 < len(values); i++ {
			threshold := (values[i] + values[i+1]) / 2

			left = left[:0]
			right = right[:0]
			for _, idx := range sample {
				if features[idx][f] <= threshold {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			score := impurity(labels, left, classify) + impurity(labels, right, classify)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// impurity returns the sum of squared errors in regression mode and the
// count-weighted Gini impurity in classification mode.
func impurity(labels []float64, sample []int, classify bool) float64 {
	n := float64(len(sample))
	if n == 0 {
		return 0
	}

	if classify {
		var positives float64
		for _, i := range sample {
			if labels[i] >= 0.5 {
				positives++
			}
		}
		p := positives / n
		return n * 2 * p * (1 - p)
	}

	var sum float64
	for _, i := range sample {
		sum += labels[i]
	}
	mean := sum / n

	var sse float64
	for _, i := range sample {
		d := labels[i] - mean
		sse += d * d
	}
	return sse
}

func isPure(labels []float64, sample []int) bool {
	for _, i := range sample[1:] {
		if labels[i] != labels[sample[0]] {
			return false
		}
	}
	return true
}

func distinctValues(features [][]float64, sample []int, feature int) []float64 {
	seen := make(map[float64]struct{}, len(sample))
	values := make([]float64, 0, len(sample))
	for _, i := range sample {
		v := features[i][feature]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	// insertion sort; sample sizes are small
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
	return values
}
