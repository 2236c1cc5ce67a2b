package pico

// SampleSet is a stage's working set of training samples: positives
// (surviving annotated object windows) followed by bootstrapped negatives,
// laid out as parallel per-field slices the way picolrn.cpp keeps
// rs/cs/ss/iinds/tvals/os/ws side by side.
type SampleSet struct {
	R, C, S    []int
	ImageIndex []int
	Target     []float32 // +1 for positives, -1 for negatives
	Output     []float32 // running cascade output, carried across stages
	Weight     []float64

	NPos, NNeg int
}

// Len returns the total number of samples.
func (s *SampleSet) Len() int { return len(s.R) }

// SR returns the row half-extent in pixels for sample i under the cascade's
// scale factors.
func (s *SampleSet) SR(i int, tsr float32) int { return int(tsr * float32(s.S[i])) }

// SC returns the column half-extent in pixels for sample i.
func (s *SampleSet) SC(i int, tsc float32) int { return int(tsc * float32(s.S[i])) }

func newSampleSet(cap int) *SampleSet {
	return &SampleSet{
		R:          make([]int, 0, cap),
		C:          make([]int, 0, cap),
		S:          make([]int, 0, cap),
		ImageIndex: make([]int, 0, cap),
		Target:     make([]float32, 0, cap),
		Output:     make([]float32, 0, cap),
		Weight:     make([]float64, 0, cap),
	}
}

func (s *SampleSet) append(r, c, sz, imgIdx int, tval, o float32) {
	s.R = append(s.R, r)
	s.C = append(s.C, c)
	s.S = append(s.S, sz)
	s.ImageIndex = append(s.ImageIndex, imgIdx)
	s.Target = append(s.Target, tval)
	s.Output = append(s.Output, o)
	s.Weight = append(s.Weight, 0)
}
