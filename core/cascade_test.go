package pico_test

import (
	"bytes"
	"testing"

	pico "github.com/avtomaton/pico/core"
)

func TestCascade_EmptyInitRoundTrip(t *testing.T) {
	c := pico.NewCascade(1.0, 1.0, 3)

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 16 {
		t.Fatalf("expected a 16-byte empty cascade file, got %d bytes", buf.Len())
	}

	got, err := pico.ReadCascade(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadCascade: %v", err)
	}
	if got.TSR != 1.0 || got.TSC != 1.0 || got.Depth != 3 || len(got.Trees) != 0 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCascade_RoundTripByteIdentical(t *testing.T) {
	c := pico.NewCascade(1.1, 0.9, 1)
	tree := &pico.Tree{Codes: []pico.TestCode{0}, Leaves: []float32{-0.5, 0.5}}
	c.AppendTree(tree, pico.SentinelThreshold)
	c.SetLastThreshold(-1337.0)

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := pico.ReadCascade(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadCascade: %v", err)
	}

	var buf2 bytes.Buffer
	if err := got.Write(&buf2); err != nil {
		t.Fatalf("re-Write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Fatalf("round-trip is not byte-identical")
	}
}

func TestCascade_SingleTreeInferenceSurvives(t *testing.T) {
	c := pico.NewCascade(1, 1, 1)
	tree := &pico.Tree{Codes: []pico.TestCode{0}, Leaves: []float32{-0.5, 0.5}}
	c.AppendTree(tree, pico.SentinelThreshold)

	img := &pico.GrayImage{Rows: 4, Cols: 4, Pixels: make([]uint8, 16)}
	accept, q := c.ClassifyRegion(2, 2, 2, img)
	if !accept {
		t.Fatalf("expected the window to survive (0.5 > sentinel threshold)")
	}
	if q != 0.5 {
		t.Fatalf("expected q=0.5, got %v", q)
	}
}

func TestCascade_EmptyCascadeAlwaysAccepts(t *testing.T) {
	c := pico.NewCascade(1, 1, 3)
	img := &pico.GrayImage{Rows: 4, Cols: 4, Pixels: make([]uint8, 16)}
	accept, q := c.ClassifyRegion(2, 2, 2, img)
	if !accept || q != 0 {
		t.Fatalf("empty cascade should accept with q=0, got accept=%v q=%v", accept, q)
	}
}
