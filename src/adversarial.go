package gan

// discStats is what one discriminator update reports back to the session.
type discStats struct {
	loss  float64
	dReal float64 // mean sigmoid(logit) over the real half
	dFake float64 // mean sigmoid(logit) over the fake half
}

// meanProb maps logits through the sigmoid and averages them.
func meanProb(logits *tensor) float64 {
	total := 0.0
	for _, v := range logits.data {
		total += sigmoid(v)
	}
	return total / float64(len(logits.data))
}

// discriminatorLoss runs the forward and backward passes of one
// discriminator update and reports the loss: the unweighted average of the
// BCE on a fresh fake batch against target 0 and on the real batch against
// target 1.
//
// The fake batch is detached before it enters the discriminator, so no
// gradient path can reach the generator. Each half's loss gradient is
// scaled by 1/2 to match the averaged loss, and the two backward passes
// accumulate into the same parameter gradient buffers. Backward runs
// immediately after its own forward because the next forward overwrites
// the layer caches. The caller zeroes the discriminator's gradients before
// this and steps the optimizer after.
func discriminatorLoss(gen *Generator, disc *Discriminator, criterion Loss, noise *noiseSource, real *tensor) (discStats, error) {
	var stats discStats
	batch := real.shape[0]

	// Fake half, target 0
	fakeOut, err := gen.forward(noise.sample(batch), true)
	if err != nil {
		return stats, err
	}
	fake := fakeOut.detach()

	fakeLogits, err := disc.forward(fake, true)
	if err != nil {
		return stats, err
	}
	if DebugMode {
		if err := checkFinite(fakeLogits, "discriminator logits (fake half)"); err != nil {
			return stats, err
		}
	}

	zeros := newTensor(batch, 1)
	fakeLoss := criterion.compute(fakeLogits, zeros)

	grad := newTensor(batch, 1)
	criterion.gradient(fakeLogits, zeros, grad)
	mulScalar(grad, 0.5)
	if _, err := disc.backward(grad); err != nil {
		return stats, err
	}
	stats.dFake = meanProb(fakeLogits)

	// Real half, target 1
	realLogits, err := disc.forward(real, true)
	if err != nil {
		return stats, err
	}
	if DebugMode {
		if err := checkFinite(realLogits, "discriminator logits (real half)"); err != nil {
			return stats, err
		}
	}

	ones := newTensor(batch, 1)
	ones.fill(1.0)
	realLoss := criterion.compute(realLogits, ones)

	grad = newTensor(batch, 1)
	criterion.gradient(realLogits, ones, grad)
	mulScalar(grad, 0.5)
	if _, err := disc.backward(grad); err != nil {
		return stats, err
	}
	stats.dReal = meanProb(realLogits)

	stats.loss = 0.5 * (fakeLoss + realLoss)
	return stats, nil
}

// generatorLoss runs the forward and backward passes of one generator
// update and returns the BCE of the discriminator's verdict on a fresh
// fake batch against target 1.
//
// The fake batch is NOT detached here: the loss gradient flows backward
// through the discriminator and on into the generator. That pass also
// writes into the discriminator's gradient buffers, which is harmless
// because the next discriminator update begins with zeroGrad.
func generatorLoss(gen *Generator, disc *Discriminator, criterion Loss, noise *noiseSource, batchSize int) (float64, error) {
	fake, err := gen.forward(noise.sample(batchSize), true)
	if err != nil {
		return 0, err
	}
	if DebugMode {
		if err := checkFinite(fake, "generator output"); err != nil {
			return 0, err
		}
	}

	logits, err := disc.forward(fake, true)
	if err != nil {
		return 0, err
	}

	ones := newTensor(batchSize, 1)
	ones.fill(1.0)
	loss := criterion.compute(logits, ones)

	grad := newTensor(batchSize, 1)
	criterion.gradient(logits, ones, grad)

	gradFake, err := disc.backward(grad)
	if err != nil {
		return 0, err
	}
	if _, err := gen.backward(gradFake); err != nil {
		return 0, err
	}

	return loss, nil
}
