package pico

import "sync"

// Sample refreshes the training set against the current cascade: every
// annotated object window that still survives the cascade is kept as a
// positive, and background windows are mined for hard negatives until their
// count matches the positive count. It returns the refreshed sample set and
// an estimate of the cascade's current false-positive rate (negatives
// accepted / total draws, 0 if no background images exist).
func Sample(pool *ImagePool, cascade *Cascade, prng *PRNG, workers int) (*SampleSet, float32) {
	samples := newSampleSet(2 * len(pool.Objects))

	for _, ann := range pool.Objects {
		img := pool.Images[ann.ImageIndex]
		accept, o := cascade.ClassifyRegion(ann.R, ann.C, ann.S, img)
		if accept {
			samples.append(ann.R, ann.C, ann.S, ann.ImageIndex, +1, o)
		}
	}
	samples.NPos = samples.Len()

	if len(pool.Background) == 0 || samples.NPos == 0 {
		return samples, 0
	}

	if workers < 1 {
		workers = 1
	}

	draws, negatives := mineNegatives(pool, cascade, prng, workers, samples.NPos)
	for _, n := range negatives {
		samples.append(n.r, n.c, n.s, n.imageIndex, -1, n.o)
	}
	samples.NNeg = len(negatives)

	if draws == 0 {
		return samples, 0
	}
	return samples, float32(len(negatives)) / float32(draws)
}

type negative struct {
	r, c, s, imageIndex int
	o                   float32
}

// mineNegatives runs workers goroutines that each draw (background image,
// pixel coordinate, object-size sample) triples from a private PRNG stream
// and test them against the cascade, appending false positives under a
// mutex until the quota (== number of positives) is met. The shared draw
// counter and stop condition are guarded by the same mutex as the append.
func mineNegatives(pool *ImagePool, cascade *Cascade, global *PRNG, workers, quota int) (draws int64, negatives []negative) {
	streams := NewWorkerPRNGs(global, workers)
	negatives = make([]negative, 0, quota)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(rnd *PRNG) {
			defer wg.Done()
			for {
				mu.Lock()
				done := len(negatives) >= quota
				mu.Unlock()
				if done {
					return
				}

				imgIdx := pool.Background[rnd.Intn(len(pool.Background))]
				img := pool.Images[imgIdx]
				r := rnd.Intn(img.Rows)
				c := rnd.Intn(img.Cols)
				s := pool.Objects[rnd.Intn(len(pool.Objects))].S

				accept, o := cascade.ClassifyRegion(r, c, s, img)

				mu.Lock()
				draws++
				if accept && len(negatives) < quota {
					negatives = append(negatives, negative{r: r, c: c, s: s, imageIndex: imgIdx, o: o})
				}
				mu.Unlock()
			}
		}(streams[w])
	}
	wg.Wait()

	return draws, negatives
}
