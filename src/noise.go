package gan

import "math/rand"

// noiseSource draws the latent vectors that seed the generator. Every call
// returns fresh i.i.d. standard normal draws; a vector is never reused
// between the discriminator and generator steps of one iteration.
type noiseSource struct {
	dim int
	rng *rand.Rand
}

func newNoiseSource(dim int, seed int64) *noiseSource {
	return &noiseSource{
		dim: dim,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// sample returns a [batch, dim] tensor of standard normal draws.
func (n *noiseSource) sample(batch int) *tensor {
	z := newTensor(batch, n.dim)
	z.fillRandNorm(0, 1, n.rng)
	return z
}
