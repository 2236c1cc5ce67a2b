package pico_test

import (
	"testing"

	pico "github.com/avtomaton/pico/core"
)

func buildToyPool() *pico.ImagePool {
	mk := func(seed uint8) *pico.GrayImage {
		px := make([]uint8, 64*64)
		for i := range px {
			px[i] = seed + uint8(i%7)
		}
		return &pico.GrayImage{Rows: 64, Cols: 64, Pixels: px}
	}

	pool := &pico.ImagePool{
		Images: []*pico.GrayImage{mk(10), mk(20), mk(30)},
	}
	pool.Background = []int{1, 2}
	pool.Objects = []pico.Annotation{
		{R: 32, C: 32, S: 10, ImageIndex: 0},
		{R: 20, C: 20, S: 10, ImageIndex: 0},
	}
	return pool
}

func TestRunOneStage_GrowsAndSaves(t *testing.T) {
	pool := buildToyPool()
	cascade := pico.NewCascade(1, 1, 2)
	prng := pico.NewPRNG(5)

	saved := 0
	cb := pico.DriverCallbacks{
		Workers:     2,
		SaveCascade: func(c *pico.Cascade) error { saved++; return nil },
	}

	if err := pico.RunOneStage(pool, cascade, prng, 0.5, 0.9, 2, cb); err != nil {
		t.Fatalf("RunOneStage: %v", err)
	}
	if len(cascade.Trees) == 0 {
		t.Fatalf("expected at least one tree grown")
	}
	if saved != 1 {
		t.Fatalf("expected SaveCascade to be invoked once, got %d", saved)
	}
}

func TestRunDefaultSchedule_SkipsRepeatingStageOnceFPRMet(t *testing.T) {
	pool := buildToyPool()
	pool.Background = nil // no background images: Sample always reports FPR 0

	cascade := pico.NewCascade(1, 1, 1)
	prng := pico.NewPRNG(7)

	stages := 0
	cb := pico.DriverCallbacks{
		Workers:     2,
		OnStageDone: func(_ pico.StageSpec, _ pico.StageResult, _ float32) { stages++ },
		SaveCascade: func(c *pico.Cascade) error { return nil },
	}

	if err := pico.RunDefaultSchedule(pool, cascade, prng, cb); err != nil {
		t.Fatalf("RunDefaultSchedule: %v", err)
	}
	// The 4 fixed stages always train, but with no background images the
	// very first repeating-round sample already reports FPR 0, so the gate
	// must skip training a repeating stage entirely rather than train one
	// first and check afterward.
	if stages != 4 {
		t.Fatalf("expected exactly the 4 fixed stages with no repeating round, got %d", stages)
	}
}
