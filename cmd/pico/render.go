package main

import (
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"os"

	"github.com/fogleman/gg"

	pico "github.com/avtomaton/pico/core"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cf := fs.String("cf", "", "cascade file (required)")
	in := fs.String("in", "", "input image (required)")
	out := fs.String("out", "", "output PNG path (required)")
	minSize := fs.Int("min", 20, "minimum window size")
	maxSize := fs.Int("max", 0, "maximum window size (default: image's shorter side)")
	shift := fs.Float64("shift", 0.1, "stride factor")
	scale := fs.Float64("scale", 1.1, "scale factor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *cf == "" || *in == "" || *out == "" {
		return fmt.Errorf("usage: pico render --cf cascade --in image.jpg --out out.png [flags]")
	}

	cascade, err := openCascade(*cf)
	if err != nil {
		return err
	}

	srcFile, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	src, err := pico.DecodeImage(srcFile)
	srcFile.Close()
	if err != nil {
		return err
	}
	gray := pico.ToGrayImage(src)

	max := *maxSize
	if max <= 0 {
		max = gray.Rows
		if gray.Cols < max {
			max = gray.Cols
		}
	}

	params := pico.ScanParams{
		MinSize:       *minSize,
		MaxSize:       max,
		ScaleFactor:   *scale,
		StrideFactor:  *shift,
		MaxDetections: 1000,
	}
	dets := pico.ClusterDetections(pico.ScanImage(gray, cascade.Detector(gray), params), pico.DefaultOverlapThreshold)

	bounds := src.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(src, 0, 0)
	dc.SetLineWidth(2.0)
	dc.SetStrokeStyle(gg.NewSolidPattern(color.RGBA{R: 255, G: 0, B: 0, A: 255}))
	for _, d := range dets {
		half := float64(d.S) / 2
		dc.DrawRectangle(float64(d.C)-half, float64(d.R)-half, float64(d.S), float64(d.S))
		dc.Stroke()
	}

	dst, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer dst.Close()
	if err := png.Encode(dst, dc.Image()); err != nil {
		return fmt.Errorf("encoding rendered image: %w", err)
	}

	fmt.Printf("rendered %d detections to %s\n", len(dets), *out)
	return nil
}
