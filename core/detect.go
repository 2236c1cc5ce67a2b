package pico

// DetectFunc is a "given a window, return survival and confidence"
// capability, kept separate from *Cascade so ScanImage can be tested with a
// stub detector. Detector adapts a Cascade into one.
type DetectFunc func(r, c, s int) (ok bool, q float32)

// Detector adapts the cascade into a DetectFunc closed over a specific
// image, for use with ScanImage.
func (c *Cascade) Detector(img *GrayImage) DetectFunc {
	return func(r, cc, s int) (bool, float32) {
		return c.ClassifyRegion(r, cc, s, img)
	}
}

// Detection is one surviving (row, column, size, confidence) window.
// Coordinates are float32 because the scale ladder's stride need not land on
// integer pixels and cluster means are fractional (two close but distinct
// boxes can collapse to a mean like (101, 100.5, 50)).
type Detection struct {
	R, C, S float32
	Q       float32
}

// ScanParams configures the multi-scale sliding-window scan.
type ScanParams struct {
	MinSize, MaxSize int
	ScaleFactor      float64
	StrideFactor     float64
	MaxDetections    int
}

// ScanImage walks a geometric ladder of window sizes from MinSize to
// MaxSize, striding each axis by max(StrideFactor*s, 1) pixels, and records
// up to MaxDetections surviving windows fully inside the image with a
// half-size margin.
func ScanImage(img *GrayImage, det DetectFunc, params ScanParams) []Detection {
	var detections []Detection

	s := float64(params.MinSize)
	for s <= float64(params.MaxSize) {
		stride := params.StrideFactor * s
		if stride < 1 {
			stride = 1
		}

		margin := s/2 + 1
		for r := margin; r <= float64(img.Rows)-margin; r += stride {
			for c := margin; c <= float64(img.Cols)-margin; c += stride {
				if len(detections) >= params.MaxDetections {
					return detections
				}
				ok, q := det(int(r), int(c), int(s))
				if !ok {
					continue
				}
				detections = append(detections, Detection{R: float32(r), C: float32(c), S: float32(s), Q: q})
			}
		}

		s = params.ScaleFactor * s
	}

	return detections
}
