package pico_test

import (
	"testing"

	pico "github.com/avtomaton/pico/core"
)

func TestScanImage_RecordsSurvivors(t *testing.T) {
	img := &pico.GrayImage{Rows: 64, Cols: 64, Pixels: make([]uint8, 64*64)}
	det := func(r, c, s int) (bool, float32) { return true, 1.0 }

	dets := pico.ScanImage(img, det, pico.ScanParams{
		MinSize: 10, MaxSize: 20, ScaleFactor: 1.1, StrideFactor: 0.5, MaxDetections: 1000,
	})
	if len(dets) == 0 {
		t.Fatalf("expected at least one survivor")
	}
}

func TestScanImage_RespectsMaxDetections(t *testing.T) {
	img := &pico.GrayImage{Rows: 64, Cols: 64, Pixels: make([]uint8, 64*64)}
	det := func(r, c, s int) (bool, float32) { return true, 1.0 }

	dets := pico.ScanImage(img, det, pico.ScanParams{
		MinSize: 4, MaxSize: 40, ScaleFactor: 1.05, StrideFactor: 0.1, MaxDetections: 5,
	})
	if len(dets) > 5 {
		t.Fatalf("expected at most 5 detections, got %d", len(dets))
	}
}

func TestDetector_AdaptsCascade(t *testing.T) {
	c := pico.NewCascade(1, 1, 1)
	tree := &pico.Tree{Codes: []pico.TestCode{0}, Leaves: []float32{-0.5, 0.5}}
	c.AppendTree(tree, pico.SentinelThreshold)

	img := &pico.GrayImage{Rows: 8, Cols: 8, Pixels: make([]uint8, 64)}
	det := c.Detector(img)

	ok, q := det(4, 4, 2)
	if !ok || q != 0.5 {
		t.Fatalf("expected ok=true q=0.5, got ok=%v q=%v", ok, q)
	}
}
