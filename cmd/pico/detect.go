package main

import (
	"flag"
	"fmt"
	"os"

	pico "github.com/avtomaton/pico/core"
)

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	cf := fs.String("cf", "", "cascade file (required)")
	minSize := fs.Int("min", 20, "minimum window size")
	maxSize := fs.Int("max", 0, "maximum window size (default: image's shorter side)")
	shift := fs.Float64("shift", 0.1, "stride factor")
	scale := fs.Float64("scale", 1.1, "scale factor")
	iou := fs.Float64("iou", float64(pico.DefaultOverlapThreshold), "overlap threshold for clustering detections")
	maxDetections := fs.Int("maxdet", 1000, "maximum raw detections considered before clustering")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if *cf == "" || len(rest) < 1 {
		return fmt.Errorf("usage: pico detect --cf cascade [flags] <image>")
	}

	cascade, err := openCascade(*cf)
	if err != nil {
		return err
	}

	img, err := openGrayImage(rest[0])
	if err != nil {
		return err
	}

	max := *maxSize
	if max <= 0 {
		max = img.Rows
		if img.Cols < max {
			max = img.Cols
		}
	}

	params := pico.ScanParams{
		MinSize:       *minSize,
		MaxSize:       max,
		ScaleFactor:   *scale,
		StrideFactor:  *shift,
		MaxDetections: *maxDetections,
	}

	raw := pico.ScanImage(img, cascade.Detector(img), params)
	clustered := pico.ClusterDetections(raw, float32(*iou))

	for _, d := range clustered {
		fmt.Printf("%v %v %v %v\n", d.R, d.C, d.S, d.Q)
	}
	return nil
}

func openCascade(path string) (*pico.Cascade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cascade: %w", err)
	}
	defer f.Close()

	c, err := pico.ReadCascade(f)
	if err != nil {
		return nil, fmt.Errorf("reading cascade: %w", err)
	}
	return c, nil
}

func openGrayImage(path string) (*pico.GrayImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, err := pico.DecodeImage(f)
	if err != nil {
		return nil, err
	}
	return pico.ToGrayImage(img), nil
}
