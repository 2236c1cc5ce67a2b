package pico

import (
	"encoding/binary"
	"fmt"
	"io"
)

// GrayImage is one grayscale image from the training pool: H*W 8-bit
// intensities in row-major order, addressed by a stable pool index.
type GrayImage struct {
	Rows, Cols int
	Pixels     []uint8
}

// At returns the intensity at (r, c), with both coordinates clamped
// independently into the image bounds.
func (img *GrayImage) At(r, c int) uint8 {
	if r < 0 {
		r = 0
	} else if r > img.Rows-1 {
		r = img.Rows - 1
	}
	if c < 0 {
		c = 0
	} else if c > img.Cols-1 {
		c = img.Cols - 1
	}
	return img.Pixels[r*img.Cols+c]
}

// Annotation is one labeled object window: pixel-space center (R, C), square
// size S, and the pool index of the image it belongs to.
type Annotation struct {
	R, C, S    int
	ImageIndex int
}

// ImagePool is the training driver's image pool: a stable-indexed sequence of
// images partitioned into background indices and object annotations.
type ImagePool struct {
	Images     []*GrayImage
	Background []int
	Objects    []Annotation
}

// LoadImagePool decodes a packed training-data stream: repeat-until-EOF
// records of (H, W, pixels, nObjects, []annotation). A record that is
// truncated partway through — including a truncated pixel buffer or a short
// annotation list — is treated as end of data: everything successfully
// decoded so far is returned with a nil error, so training can proceed with
// whatever was read rather than fail on a truncated file.
func LoadImagePool(r io.Reader) (*ImagePool, error) {
	pool := &ImagePool{}

	for {
		h, w, ok, err := readDims(r)
		if err != nil {
			return nil, fmt.Errorf("pico: reading image dimensions: %w", err)
		}
		if !ok {
			break
		}

		pixels := make([]uint8, h*w)
		if _, err := io.ReadFull(r, pixels); err != nil {
			break
		}

		var nObjects int32
		if err := binary.Read(r, binary.LittleEndian, &nObjects); err != nil {
			pool.Images = append(pool.Images, &GrayImage{Rows: h, Cols: w, Pixels: pixels})
			pool.Background = append(pool.Background, len(pool.Images)-1)
			break
		}

		idx := len(pool.Images)
		pool.Images = append(pool.Images, &GrayImage{Rows: h, Cols: w, Pixels: pixels})

		if nObjects == 0 {
			pool.Background = append(pool.Background, idx)
			continue
		}

		truncated := false
		for i := int32(0); i < nObjects; i++ {
			ann, ok, err := readAnnotation(r, idx)
			if err != nil || !ok {
				truncated = true
				break
			}
			pool.Objects = append(pool.Objects, ann)
		}
		if truncated {
			break
		}
	}

	return pool, nil
}

func readDims(r io.Reader) (h, w int, ok bool, err error) {
	var hw [2]int32
	if err := binary.Read(r, binary.LittleEndian, &hw); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	return int(hw[0]), int(hw[1]), true, nil
}

func readAnnotation(r io.Reader, imageIndex int) (Annotation, bool, error) {
	var rcs [3]int32
	if err := binary.Read(r, binary.LittleEndian, &rcs); err != nil {
		return Annotation{}, false, err
	}
	return Annotation{R: int(rcs[0]), C: int(rcs[1]), S: int(rcs[2]), ImageIndex: imageIndex}, true, nil
}
