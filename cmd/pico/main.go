// Command pico trains and runs the pixel-intensity-comparison cascade
// detector implemented by the core package. Subcommands: train (the default
// schedule, --one-stage, --init-only), detect (run a persisted cascade over
// an image), and render (a debug visualization of detect's output).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	pico "github.com/avtomaton/pico/core"
	"github.com/avtomaton/pico/utils"
	"golang.org/x/term"
)

const banner = `
┌─┐┬┌─┐┌─┐
├─┘││ ┬│ │
┴  ┴└─┘└─┘

A cascaded pixel-intensity object detector trainer.
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "detect":
		err = runDetect(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("pico: %v", err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, banner)
	fmt.Fprintln(os.Stderr, `Usage:
  pico train   [--sr f] [--sc f] [--depth n] [--tpr f] [--fpr f] [--ntrees n]
               [--init-only] [--one-stage] [--workers n] <data_file> <output_file>
  pico detect  --cf cascade [--min n] [--max n] [--shift f] [--scale f] <image>
  pico render  --cf cascade --in image.jpg --out out.png [--min n] [--max n]`)
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	sr := fs.Float64("sr", 1.0, "row scale factor")
	sc := fs.Float64("sc", 1.0, "column scale factor")
	depth := fs.Int("depth", 5, "tree depth")
	tpr := fs.Float64("tpr", 0, "required stage TPR (with --one-stage)")
	fpr := fs.Float64("fpr", 0, "required stage FPR (with --one-stage)")
	ntrees := fs.Int("ntrees", 0, "tree budget for the stage (with --one-stage)")
	initOnly := fs.Bool("init-only", false, "write an empty cascade with the given geometry and exit")
	oneStage := fs.Bool("one-stage", false, "run a single stage against an existing (or fresh) cascade")
	workers := fs.Int("workers", 0, "negative-mining worker count (default: NumCPU)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: pico train [flags] <data_file> <output_file>")
	}
	dataFile, outFile := rest[0], rest[1]

	if *workers <= 0 {
		*workers = defaultWorkers()
	}

	if *initOnly {
		cascade := pico.NewCascade(float32(*sr), float32(*sc), int32(*depth))
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		if err := cascade.Write(f); err != nil {
			return err
		}
		log.Printf("initialized empty cascade: (%v, %v, %d)", *sr, *sc, *depth)
		return nil
	}

	prng := pico.NewPRNG(uint32(time.Now().UnixNano()))
	spinner := newSpinner("training...")
	spinner.Start()
	defer spinner.Stop()

	save := func(c *pico.Cascade) error {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return c.Write(f)
	}

	start := time.Now()
	onTree := func(treeIndex int, tpr, fpr float32) {
		spinner.Logf("  tree %d: stage tpr=%.6f, stage fpr=%.6f, elapsed=%.1fs", treeIndex, tpr, fpr, time.Since(start).Seconds())
	}

	if *oneStage {
		cascade, err := loadOrCreateCascade(outFile, float32(*sr), float32(*sc), int32(*depth))
		if err != nil {
			return err
		}

		dataReader, err := os.Open(dataFile)
		if err != nil {
			return fmt.Errorf("opening training data: %w", err)
		}
		defer dataReader.Close()

		pool, err := pico.LoadImagePool(dataReader)
		if err != nil {
			return fmt.Errorf("loading training data: %w", err)
		}

		cb := pico.DriverCallbacks{OnTree: onTree, SaveCascade: save, Workers: *workers}
		if err := pico.RunOneStage(pool, cascade, prng, float32(*tpr), float32(*fpr), *ntrees, cb); err != nil {
			return err
		}
		return save(cascade)
	}

	dataReader, err := os.Open(dataFile)
	if err != nil {
		return fmt.Errorf("opening training data: %w", err)
	}
	defer dataReader.Close()

	pool, err := pico.LoadImagePool(dataReader)
	if err != nil {
		return fmt.Errorf("loading training data: %w", err)
	}

	cascade := pico.NewCascade(float32(*sr), float32(*sc), int32(*depth))
	cb := pico.DriverCallbacks{
		OnTree:      onTree,
		SaveCascade: save,
		Workers:     *workers,
		OnStageDone: func(spec pico.StageSpec, result pico.StageResult, sampledFPR float32) {
			spinner.Logf("* stage complete (%d trees, tpr=%.6f, fpr=%.6f), sampled cascade FPR estimate: %.8f",
				result.TreesAppended, result.TPR, result.FPR, sampledFPR)
		},
	}

	return pico.RunDefaultSchedule(pool, cascade, prng, cb)
}

func loadOrCreateCascade(path string, sr, sc float32, depth int32) (*pico.Cascade, error) {
	f, err := os.Open(path)
	if err != nil {
		return pico.NewCascade(sr, sc, depth), nil
	}
	defer f.Close()

	c, err := pico.ReadCascade(f)
	if err != nil {
		return pico.NewCascade(sr, sc, depth), nil
	}
	return c, nil
}

func defaultWorkers() int {
	return runtime.NumCPU()
}

// newSpinner returns an indicator that only animates when stdout is a
// terminal; piped or redirected output gets Logf's plain lines with no
// Start/Stop animation, avoiding control-character noise in logs.
func newSpinner(msg string) *utils.ProgressIndicator {
	pi := utils.NewProgressIndicator(msg, 100*time.Millisecond)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pi.Quiet = true
	}
	return pi
}
