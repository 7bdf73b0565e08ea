package gan

// runningMean accumulates batch values between display boundaries.
type runningMean struct {
	sum   float64
	count int
}

func (r *runningMean) add(v float64) {
	r.sum += v
	r.count++
}

// mean returns the average of everything recorded since the last reset.
// An empty accumulator reports 0.
func (r *runningMean) mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

func (r *runningMean) reset() {
	r.sum = 0
	r.count = 0
}

// snapshot returns the current mean and resets the accumulator, so every
// display interval reports only its own batches.
func (r *runningMean) snapshot() float64 {
	m := r.mean()
	r.reset()
	return m
}

// History holds the per-interval training series, one entry per display
// boundary. Slices always stay the same length.
type History struct {
	Steps    []int
	GenLoss  []float64
	DiscLoss []float64
	DReal    []float64
	DFake    []float64
}

func (h *History) record(step int, genLoss, discLoss, dReal, dFake float64) {
	h.Steps = append(h.Steps, step)
	h.GenLoss = append(h.GenLoss, genLoss)
	h.DiscLoss = append(h.DiscLoss, discLoss)
	h.DReal = append(h.DReal, dReal)
	h.DFake = append(h.DFake, dFake)
}
