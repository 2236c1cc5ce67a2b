package pico_test

import (
	"testing"

	pico "github.com/avtomaton/pico/core"
)

func TestSample_HardNegativeQuota(t *testing.T) {
	bg := &pico.GrayImage{Rows: 64, Cols: 64, Pixels: make([]uint8, 64*64)}
	pool := &pico.ImagePool{
		Images:     []*pico.GrayImage{bg},
		Background: []int{0},
		Objects: []pico.Annotation{
			{R: 10, C: 10, S: 8, ImageIndex: 0},
			{R: 20, C: 20, S: 8, ImageIndex: 0},
		},
	}
	// Empty cascade accepts every window, so every positive survives and
	// every negative draw is a "false positive" — the quota is hit on the
	// first draws.
	cascade := pico.NewCascade(1, 1, 3)
	prng := pico.NewPRNG(123)

	samples, fpr := pico.Sample(pool, cascade, prng, 4)
	if samples.NPos != 2 {
		t.Fatalf("expected 2 positives, got %d", samples.NPos)
	}
	if samples.NNeg != 2 {
		t.Fatalf("expected negatives to match positive quota, got %d", samples.NNeg)
	}
	if fpr <= 0 || fpr > 1 {
		t.Fatalf("expected a sane FPR estimate in (0, 1], got %v", fpr)
	}
}

func TestSample_NoBackgroundReturnsZeroNegatives(t *testing.T) {
	img := &pico.GrayImage{Rows: 16, Cols: 16, Pixels: make([]uint8, 256)}
	pool := &pico.ImagePool{
		Images:     []*pico.GrayImage{img},
		Background: nil,
		Objects:    []pico.Annotation{{R: 8, C: 8, S: 4, ImageIndex: 0}},
	}
	cascade := pico.NewCascade(1, 1, 2)
	prng := pico.NewPRNG(1)

	samples, fpr := pico.Sample(pool, cascade, prng, 2)
	if samples.NNeg != 0 {
		t.Fatalf("expected 0 negatives with no background pool, got %d", samples.NNeg)
	}
	if fpr != 0 {
		t.Fatalf("expected FPR estimate 0 with no background pool, got %v", fpr)
	}
}
