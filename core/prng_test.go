package pico_test

import (
	"testing"

	pico "github.com/avtomaton/pico/core"
)

func TestPRNG_Deterministic(t *testing.T) {
	a := pico.NewPRNG(42)
	b := pico.NewPRNG(42)

	for i := 0; i < 100; i++ {
		av, bv := a.Uint32(), b.Uint32()
		if av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestPRNG_DifferentSeedsDiverge(t *testing.T) {
	a := pico.NewPRNG(1)
	b := pico.NewPRNG(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
		}
	}
	if same {
		t.Fatalf("expected diverging sequences for different seeds")
	}
}

func TestPRNG_IntnInRange(t *testing.T) {
	p := pico.NewPRNG(7)
	for i := 0; i < 1000; i++ {
		v := p.Intn(17)
		if v < 0 || v >= 17 {
			t.Fatalf("Intn(17) out of range: %d", v)
		}
	}
}

func TestNewWorkerPRNGs_IndependentStreams(t *testing.T) {
	g := pico.NewPRNG(99)
	workers := pico.NewWorkerPRNGs(g, 4)
	if len(workers) != 4 {
		t.Fatalf("expected 4 workers, got %d", len(workers))
	}
	seen := map[uint32]bool{}
	for _, w := range workers {
		seen[w.Uint32()] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct streams, got %d distinct first draws", len(seen))
	}
}
