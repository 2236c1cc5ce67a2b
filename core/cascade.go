package pico

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// SentinelThreshold marks a tree that must never reject during cascade
// evaluation — every tree within a stage except the last carries it, so the
// stage as a whole only rejects a sample once it has seen every tree grown
// this stage.
const SentinelThreshold float32 = -1337.0

// Cascade is an ordered sequence of trees with per-tree exit thresholds and
// the window scale factors used to turn an annotation size into pixel
// half-extents.
type Cascade struct {
	TSR, TSC   float32
	Depth      int32
	Trees      []Tree
	Thresholds []float32
}

// NewCascade creates an empty cascade with the given geometry.
func NewCascade(tsr, tsc float32, depth int32) *Cascade {
	return &Cascade{TSR: tsr, TSC: tsc, Depth: depth}
}

// AppendTree adds a newly grown tree to the cascade under the given
// threshold (typically SentinelThreshold during stage growth).
func (c *Cascade) AppendTree(t *Tree, threshold float32) {
	c.Trees = append(c.Trees, *t)
	c.Thresholds = append(c.Thresholds, threshold)
}

// SetLastThreshold overwrites the threshold of the most recently appended
// tree — this is how a stage's calibrated threshold gets persisted once
// calibration finishes; see DESIGN.md for why the threshold is written this
// way rather than at tree-growth time.
func (c *Cascade) SetLastThreshold(t float32) {
	if len(c.Thresholds) == 0 {
		return
	}
	c.Thresholds[len(c.Thresholds)-1] = t
}

// halfExtents converts an annotation size into pixel half-extents under the
// cascade's row/column scale factors.
func (c *Cascade) halfExtents(s int) (sr, sc int) {
	return int(c.TSR * float32(s)), int(c.TSC * float32(s))
}

// ClassifyRegion runs every tree of the cascade over one window, stopping
// the first time the running output falls at or below a tree's threshold. A
// cascade with no trees accepts everything with output 0, matching a
// freshly-initialized cascade.
func (c *Cascade) ClassifyRegion(r, c2, s int, img *GrayImage) (accept bool, o float32) {
	if len(c.Trees) == 0 {
		return true, 0
	}
	sr, sc := c.halfExtents(s)

	var out float32
	for i := range c.Trees {
		out += EvalTree(&c.Trees[i], r, c2, sr, sc, img)
		if out <= c.Thresholds[i] {
			return false, out
		}
	}
	return true, out
}

// Write serializes the cascade to w in a little-endian format: (tsr, tsc,
// depth, ntrees) followed by, for each tree, its codes, leaves, and
// threshold.
func (c *Cascade) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := []interface{}{c.TSR, c.TSC, c.Depth, int32(len(c.Trees))}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("pico: writing cascade header: %w", err)
		}
	}

	for i := range c.Trees {
		t := &c.Trees[i]
		if err := binary.Write(bw, binary.LittleEndian, t.Codes); err != nil {
			return fmt.Errorf("pico: writing tree %d codes: %w", i, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, t.Leaves); err != nil {
			return fmt.Errorf("pico: writing tree %d leaves: %w", i, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, c.Thresholds[i]); err != nil {
			return fmt.Errorf("pico: writing tree %d threshold: %w", i, err)
		}
	}

	return bw.Flush()
}

// ReadCascade deserializes a cascade previously written by Write.
func ReadCascade(r io.Reader) (*Cascade, error) {
	c := &Cascade{}
	var ntrees int32

	fields := []interface{}{&c.TSR, &c.TSC, &c.Depth, &ntrees}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("pico: reading cascade header: %w", err)
		}
	}

	nLeaves := 1 << uint(c.Depth)
	c.Trees = make([]Tree, ntrees)
	c.Thresholds = make([]float32, ntrees)

	for i := 0; i < int(ntrees); i++ {
		codes := make([]TestCode, nLeaves-1)
		if err := binary.Read(r, binary.LittleEndian, codes); err != nil {
			return nil, fmt.Errorf("pico: reading tree %d codes: %w", i, err)
		}
		leaves := make([]float32, nLeaves)
		if err := binary.Read(r, binary.LittleEndian, leaves); err != nil {
			return nil, fmt.Errorf("pico: reading tree %d leaves: %w", i, err)
		}
		var threshold float32
		if err := binary.Read(r, binary.LittleEndian, &threshold); err != nil {
			return nil, fmt.Errorf("pico: reading tree %d threshold: %w", i, err)
		}

		c.Trees[i] = Tree{Codes: codes, Leaves: leaves}
		c.Thresholds[i] = threshold
	}

	return c, nil
}
