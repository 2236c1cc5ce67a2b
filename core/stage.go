package pico

import (
	"fmt"
	"math"
)

// thresholdFloor bounds the downward threshold scan: if calibration reaches
// this floor without meeting mintpr, the stage has failed and the outer
// driver must stop rather than loop forever.
const thresholdFloor = -1000.0

// thresholdStep is the grid step used when scanning the calibration
// threshold downward from +5.0.
const thresholdStep = 0.005

// StageResult reports what a completed stage achieved, for progress logging.
type StageResult struct {
	TreesAppended int
	TPR, FPR      float32
	Threshold     float32
}

// TreeProgress is invoked once per tree appended within a stage, so a caller
// can log "tree N: stage tpr=..., stage fpr=..., elapsed=...".
type TreeProgress func(treeIndex int, tpr, fpr float32)

// LearnStage appends up to maxTrees trees to the cascade: reweight
// (confidence-rated boosting), grow a tree with a sentinel threshold, update
// running outputs, calibrate the stage threshold, and stop once FPR <=
// maxFPR or the tree budget is exhausted. The final calibrated threshold is
// always written onto the last tree appended — see DESIGN.md for why this
// departs from the C source's apparent variable-shadowing bug.
func LearnStage(c *Cascade, samples *SampleSet, images []*GrayImage, prng *PRNG, mintpr, maxfpr float32, maxTrees int, onTree TreeProgress) (StageResult, error) {
	n := samples.Len()
	nPos, nNeg := samples.NPos, samples.NNeg

	srs := make([]int, n)
	scs := make([]int, n)
	for i := 0; i < n; i++ {
		srs[i] = samples.SR(i, c.TSR)
		scs[i] = samples.SC(i, c.TSC)
	}

	gs := &growSamples{
		Target:     samples.Target,
		R:          samples.R,
		C:          samples.C,
		SR:         srs,
		SC:         scs,
		ImageIndex: samples.ImageIndex,
		Weight:     samples.Weight,
		Images:     images,
	}

	allIdx := make([]int, n)
	for i := range allIdx {
		allIdx[i] = i
	}

	var fpr float32 = 1.0
	var tpr float32
	var threshold float32
	appended := 0

	for appended < maxTrees && fpr > maxfpr {
		reweight(samples, nPos, nNeg)

		tree := GrowTree(int(c.Depth), gs, allIdx, prng)
		c.AppendTree(tree, SentinelThreshold)
		appended++

		for i := 0; i < n; i++ {
			o := EvalTree(tree, samples.R[i], samples.C[i], srs[i], scs[i], images[samples.ImageIndex[i]])
			samples.Output[i] += o
		}

		var err error
		threshold, tpr, fpr, err = calibrateThreshold(samples, nPos, nNeg, mintpr)
		if err != nil {
			return StageResult{}, err
		}

		if onTree != nil {
			onTree(len(c.Trees), tpr, fpr)
		}
	}

	if appended > 0 {
		c.SetLastThreshold(threshold)
	}

	return StageResult{TreesAppended: appended, TPR: tpr, FPR: fpr, Threshold: threshold}, nil
}

// reweight applies confidence-rated boosting: positive weight is
// exp(-o)/nPos, negative weight is exp(+o)/nNeg, then the whole set is
// normalized to sum to 1.
func reweight(samples *SampleSet, nPos, nNeg int) {
	var wsum float64
	for i := 0; i < samples.Len(); i++ {
		o := float64(samples.Output[i])
		var w float64
		if samples.Target[i] > 0 {
			w = math.Exp(-o) / float64(nPos)
		} else {
			w = math.Exp(o) / float64(nNeg)
		}
		samples.Weight[i] = w
		wsum += w
	}
	for i := range samples.Weight {
		samples.Weight[i] /= wsum
	}
}

// calibrateThreshold scans T downward from +5.0 on the 0.005 grid and
// returns the largest T for which TPR >= mintpr, along with the resulting
// TPR/FPR. It is bounded at thresholdFloor: if the scan reaches the floor
// without satisfying mintpr, the stage has failed.
func calibrateThreshold(samples *SampleSet, nPos, nNeg int, mintpr float32) (threshold, tpr, fpr float32, err error) {
	threshold = 5.0
	for {
		threshold -= thresholdStep
		if threshold < thresholdFloor {
			return 0, 0, 0, fmt.Errorf("pico: threshold calibration failed to reach mintpr=%.4f before floor %v", mintpr, thresholdFloor)
		}

		var numTP, numFP int
		for i := 0; i < samples.Len(); i++ {
			if samples.Target[i] > 0 && samples.Output[i] > threshold {
				numTP++
			}
			if samples.Target[i] < 0 && samples.Output[i] > threshold {
				numFP++
			}
		}

		tpr = float32(numTP) / float32(nPos)
		fpr = float32(numFP) / float32(nNeg)

		if tpr >= mintpr {
			return threshold, tpr, fpr, nil
		}
	}
}
