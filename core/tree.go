package pico

import "math"

// candidatesPerSplit is the number of randomly generated binary test codes
// evaluated at each internal node before picking the lowest-loss one
// (picolrn.cpp's NRANDS).
const candidatesPerSplit = 1024

// Tree is a perfect binary regression tree of fixed depth: Codes holds the
// 2^D-1 internal-node test codes in breadth-first (0-based heap) order, and
// Leaves holds the 2^D leaf outputs.
type Tree struct {
	Codes  []TestCode
	Leaves []float32
}

// growSamples bundles the parallel per-sample arrays GrowTree needs so the
// recursive splitter doesn't have to thread eight slices through every call
// (picolrn.cpp's grow_subtree takes them positionally; we bundle instead).
type growSamples struct {
	Target     []float32
	R, C       []int
	SR, SC     []int
	ImageIndex []int
	Weight     []float64
	Images     []*GrayImage
}

// GrowTree grows one depth-D tree over the samples named by indices with a
// greedy recursive splitter. prng supplies the candidate test codes and is
// consumed deterministically in growth order, so the same seed always
// produces the same tree.
func GrowTree(depth int, s *growSamples, indices []int, prng *PRNG) *Tree {
	nLeaves := 1 << depth
	t := &Tree{
		Codes:  make([]TestCode, nLeaves-1),
		Leaves: make([]float32, nLeaves),
	}
	idx := append([]int(nil), indices...)
	growSubtree(t, s, 0, 0, depth, idx, prng)
	return t
}

func growSubtree(t *Tree, s *growSamples, nodeIdx, d, maxDepth int, idx []int, prng *PRNG) {
	if d == maxDepth {
		lutIdx := nodeIdx - (len(t.Leaves) - 1)
		t.Leaves[lutIdx] = weightedMean(s, idx)
		return
	}

	if len(idx) <= 1 {
		t.Codes[nodeIdx] = 0
		growSubtree(t, s, 2*nodeIdx+1, d+1, maxDepth, idx, prng)
		growSubtree(t, s, 2*nodeIdx+2, d+1, maxDepth, idx, prng)
		return
	}

	best := pickBestSplit(s, idx, prng)
	t.Codes[nodeIdx] = best

	n0 := partitionByTest(best, s, idx)
	growSubtree(t, s, 2*nodeIdx+1, d+1, maxDepth, idx[:n0], prng)
	growSubtree(t, s, 2*nodeIdx+2, d+1, maxDepth, idx[n0:], prng)
}

func weightedMean(s *growSamples, idx []int) float32 {
	var tvalAccum, wsum float64
	for _, i := range idx {
		tvalAccum += s.Weight[i] * float64(s.Target[i])
		wsum += s.Weight[i]
	}
	if wsum == 0 {
		return 0
	}
	return float32(tvalAccum / wsum)
}

// pickBestSplit draws candidatesPerSplit test codes and keeps the one with
// the lowest weighted-MSE split loss, ties broken by lowest candidate index.
// Candidate scoring is independent per candidate; here the candidates are
// scored one after another on the calling goroutine.
func pickBestSplit(s *growSamples, idx []int, prng *PRNG) TestCode {
	best := TestCode(prng.Int32())
	bestScore := splitScore(best, s, idx)

	for i := 1; i < candidatesPerSplit; i++ {
		cand := TestCode(prng.Int32())
		score := splitScore(cand, s, idx)
		if score < bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

// splitScore computes the weighted MSE split loss a candidate test code
// would produce. A side with zero weight mass contributes zero to the loss
// rather than NaN from a 0/0 division.
func splitScore(code TestCode, s *growSamples, idx []int) float64 {
	var wsum, wsum0, wsum1 float64
	var wtval0, wtvalSq0, wtval1, wtvalSq1 float64

	for _, i := range idx {
		w := s.Weight[i]
		tv := float64(s.Target[i])
		img := s.Images[s.ImageIndex[i]]

		if EvalTest(code, s.R[i], s.C[i], s.SR[i], s.SC[i], img) == 1 {
			wsum1 += w
			wtval1 += w * tv
			wtvalSq1 += w * tv * tv
		} else {
			wsum0 += w
			wtval0 += w * tv
			wtvalSq0 += w * tv * tv
		}
		wsum += w
	}

	var wmse0, wmse1 float64
	if wsum0 > 0 {
		wmse0 = wtvalSq0 - (wtval0*wtval0)/wsum0
	}
	if wsum1 > 0 {
		wmse1 = wtvalSq1 - (wtval1*wtval1)/wsum1
	}
	if wsum == 0 {
		return math.Inf(1)
	}
	return (wmse0 + wmse1) / wsum
}

// partitionByTest reorders idx in place into a [0, n0) prefix that routes
// left (test == 0) and a [n0, len(idx)) suffix that routes right, using the
// two-pointer swap from picolrn.cpp's split_training_data. Order within a
// side is unspecified; n0 is recomputed by a final pass over the whole slice
// exactly as the original does, rather than trusted from pointer position.
func partitionByTest(code TestCode, s *growSamples, idx []int) int {
	i, j := 0, len(idx)-1
	for i != j {
		for testBit(code, s, idx[i]) == 0 {
			if i == j {
				break
			}
			i++
		}
		for testBit(code, s, idx[j]) == 1 {
			if i == j {
				break
			}
			j--
		}
		if i == j {
			break
		}
		idx[i], idx[j] = idx[j], idx[i]
	}

	n0 := 0
	for _, i := range idx {
		if testBit(code, s, i) == 0 {
			n0++
		}
	}
	return n0
}

func testBit(code TestCode, s *growSamples, i int) int {
	img := s.Images[s.ImageIndex[i]]
	return EvalTest(code, s.R[i], s.C[i], s.SR[i], s.SC[i], img)
}

// EvalTree walks the tree's 1-based breadth-first index and returns the
// reached leaf's output.
func EvalTree(t *Tree, r, c, sr, sc int, img *GrayImage) float32 {
	depth := treeDepth(t)
	idx := 1
	for j := 0; j < depth; j++ {
		bit := EvalTest(t.Codes[idx-1], r, c, sr, sc, img)
		idx = 2*idx + bit
	}
	return t.Leaves[idx-len(t.Leaves)]
}

func treeDepth(t *Tree) int {
	d := 0
	for n := len(t.Leaves); n > 1; n >>= 1 {
		d++
	}
	return d
}
