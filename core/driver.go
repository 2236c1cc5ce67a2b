package pico

import "fmt"

// StageSpec is one entry of the training schedule: a (mintpr, maxfpr,
// maxTrees) target. Exported so callers can reference it in an
// OnStageDone callback.
type StageSpec struct {
	MinTPR, MaxFPR float32
	MaxTrees       int
}

// defaultSchedule is the four fixed stages, escalating TPR targets while
// holding a constant FPR ceiling of 0.5, grounded on
// learn_with_default_parameters in picolrn.cpp.
var defaultSchedule = []StageSpec{
	{MinTPR: 0.98, MaxFPR: 0.5, MaxTrees: 4},
	{MinTPR: 0.985, MaxFPR: 0.5, MaxTrees: 8},
	{MinTPR: 0.99, MaxFPR: 0.5, MaxTrees: 16},
	{MinTPR: 0.995, MaxFPR: 0.5, MaxTrees: 32},
}

// repeatingStage is the stage spec applied again and again, after the fixed
// schedule, while the most recently sampled cascade FPR estimate exceeds
// fprTarget.
var repeatingStage = StageSpec{MinTPR: 0.9975, MaxFPR: 0.5, MaxTrees: 64}

// fprTarget is the global false-positive rate the repeating stage chases.
const fprTarget = 1e-6

// DriverCallbacks lets a caller observe and persist progress without the
// driver depending on any particular logging or file-I/O mechanism.
type DriverCallbacks struct {
	OnTree      TreeProgress
	OnStageDone func(spec StageSpec, result StageResult, sampledFPR float32)
	SaveCascade func(*Cascade) error
	Workers     int
}

// RunDefaultSchedule drives the fixed four-stage schedule and then repeats
// a fifth stage spec, but only after checking the cascade's freshly sampled
// FPR against fprTarget first: if a repeating round's sample already meets
// the target, no further stage is grown. This mirrors
// learn_with_default_parameters's check-then-train order, where the
// sampled FPR decides whether to call learn_new_stage at all.
func RunDefaultSchedule(pool *ImagePool, cascade *Cascade, prng *PRNG, cb DriverCallbacks) error {
	for _, spec := range defaultSchedule {
		samples, sampledFPR := Sample(pool, cascade, prng, cb.Workers)
		if err := trainStage(cascade, samples, pool.Images, prng, spec, sampledFPR, cb); err != nil {
			return err
		}
	}

	for {
		samples, sampledFPR := Sample(pool, cascade, prng, cb.Workers)
		if sampledFPR <= fprTarget {
			return nil
		}
		if err := trainStage(cascade, samples, pool.Images, prng, repeatingStage, sampledFPR, cb); err != nil {
			return err
		}
	}
}

func trainStage(cascade *Cascade, samples *SampleSet, images []*GrayImage, prng *PRNG, spec StageSpec, sampledFPR float32, cb DriverCallbacks) error {
	result, err := LearnStage(cascade, samples, images, prng, spec.MinTPR, spec.MaxFPR, spec.MaxTrees, cb.OnTree)
	if err != nil {
		return fmt.Errorf("pico: stage failed: %w", err)
	}

	if cb.OnStageDone != nil {
		cb.OnStageDone(spec, result, sampledFPR)
	}
	if cb.SaveCascade != nil {
		if err := cb.SaveCascade(cascade); err != nil {
			return fmt.Errorf("pico: saving cascade after stage: %w", err)
		}
	}
	return nil
}

// RunOneStage backs the --one-stage CLI mode: a single stage with
// caller-supplied TPR/FPR/ntrees targets.
func RunOneStage(pool *ImagePool, cascade *Cascade, prng *PRNG, mintpr, maxfpr float32, maxTrees int, cb DriverCallbacks) error {
	samples, sampledFPR := Sample(pool, cascade, prng, cb.Workers)
	spec := StageSpec{MinTPR: mintpr, MaxFPR: maxfpr, MaxTrees: maxTrees}
	return trainStage(cascade, samples, pool.Images, prng, spec, sampledFPR, cb)
}
