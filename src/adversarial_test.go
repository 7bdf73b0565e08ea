package gan

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func buildPair(t *testing.T, seed int64) (*Generator, *Discriminator, *noiseSource) {
	t.Helper()
	gen, err := NewGenerator(GeneratorConfig{
		LatentDim:     8,
		HiddenDim:     4,
		OutputDim:     16,
		NegativeSlope: 0.2,
		DropoutRate:   0.3,
		BNEpsilon:     1e-5,
		BNMomentum:    0.9,
		Seed:          seed,
	})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	disc, err := NewDiscriminator(DiscriminatorConfig{
		InputDim:      16,
		HiddenDim:     4,
		NegativeSlope: 0.2,
		Seed:          seed + 1,
	})
	if err != nil {
		t.Fatalf("NewDiscriminator failed: %v", err)
	}
	return gen, disc, newNoiseSource(8, seed+2)
}

func realBatch(seed int64, rows int) *tensor {
	x := newTensor(rows, 16)
	x.fillRandUniform(0, 1, rand.New(rand.NewSource(seed)))
	return x
}

func snapshotBits(params []*tensor) [][]uint64 {
	out := make([][]uint64, len(params))
	for i, p := range params {
		bits := make([]uint64, len(p.data))
		for j, v := range p.data {
			bits[j] = math.Float64bits(v)
		}
		out[i] = bits
	}
	return out
}

func TestDiscriminatorStepLeavesGeneratorBitIdentical(t *testing.T) {
	gen, disc, noise := buildPair(t, 1)
	criterion := BCEWithLogits(BCEWithLogitsConfig{Reduction: "mean"})
	opt := Adam(AdamConfig{LR: 0.001, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8, WeightDecay: 0})

	genParams := snapshotBits(gen.parameters())
	genGrads := snapshotBits(gen.gradients())

	disc.zeroGrad()
	if _, err := discriminatorLoss(gen, disc, criterion, noise, realBatch(2, 8)); err != nil {
		t.Fatalf("discriminatorLoss failed: %v", err)
	}
	opt.step(disc.parameters(), disc.gradients())

	if !reflect.DeepEqual(genParams, snapshotBits(gen.parameters())) {
		t.Fatalf("discriminator update modified generator parameters")
	}
	if !reflect.DeepEqual(genGrads, snapshotBits(gen.gradients())) {
		t.Fatalf("discriminator update wrote generator gradients")
	}
}

func TestDiscriminatorLossPopulatesDiscGradientsOnly(t *testing.T) {
	gen, disc, noise := buildPair(t, 3)
	criterion := BCEWithLogits(BCEWithLogitsConfig{Reduction: "mean"})

	disc.zeroGrad()
	stats, err := discriminatorLoss(gen, disc, criterion, noise, realBatch(4, 8))
	if err != nil {
		t.Fatalf("discriminatorLoss failed: %v", err)
	}

	if math.IsNaN(stats.loss) || math.IsInf(stats.loss, 0) || stats.loss <= 0 {
		t.Fatalf("implausible discriminator loss %v", stats.loss)
	}
	if stats.dReal <= 0 || stats.dReal >= 1 || stats.dFake <= 0 || stats.dFake >= 1 {
		t.Fatalf("probabilities out of range: d_real=%v d_fake=%v", stats.dReal, stats.dFake)
	}

	nonzero := false
	for _, g := range disc.gradients() {
		for _, v := range g.data {
			if v != 0 {
				nonzero = true
			}
		}
	}
	if !nonzero {
		t.Fatalf("discriminator gradients all zero after backward")
	}
}

func TestGeneratorLossReachesBottomOfGenerator(t *testing.T) {
	gen, disc, noise := buildPair(t, 5)
	criterion := BCEWithLogits(BCEWithLogitsConfig{Reduction: "mean"})

	gen.zeroGrad()
	loss, err := generatorLoss(gen, disc, criterion, noise, 8)
	if err != nil {
		t.Fatalf("generatorLoss failed: %v", err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) || loss <= 0 {
		t.Fatalf("implausible generator loss %v", loss)
	}

	firstDense := gen.layers[0].(*DenseLayer)
	nonzero := false
	for _, v := range firstDense.gradW.data {
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Fatalf("no gradient reached the first generator layer")
	}
}

// constLoss is a stub criterion with a fixed value and zero gradient.
type constLoss struct{ value float64 }

func (c *constLoss) compute(pred, target *tensor) float64   { return c.value }
func (c *constLoss) gradient(pred, target, gradOut *tensor) { gradOut.zero() }
func (c *constLoss) name() string                           { return "const" }

func TestDiscriminatorLossAveragesTheTwoHalves(t *testing.T) {
	gen, disc, noise := buildPair(t, 7)

	disc.zeroGrad()
	stats, err := discriminatorLoss(gen, disc, &constLoss{value: 3}, noise, realBatch(6, 8))
	if err != nil {
		t.Fatalf("discriminatorLoss failed: %v", err)
	}

	if stats.loss != 3 {
		t.Fatalf("expected 0.5*(3+3) = 3, got %v", stats.loss)
	}

	// zero loss gradient must leave the buffers untouched
	for _, g := range disc.gradients() {
		for i, v := range g.data {
			if v != 0 {
				t.Fatalf("gradient element %d written despite zero loss gradient: %v", i, v)
			}
		}
	}
}

func TestDiscriminatorLossPermutationInvariant(t *testing.T) {
	const rows = 8

	genA, discA, noiseA := buildPair(t, 9)
	genB, discB, noiseB := buildPair(t, 9)
	criterion := BCEWithLogits(BCEWithLogitsConfig{Reduction: "mean"})

	real := realBatch(11, rows)
	reversed := newTensor(rows, 16)
	for i := 0; i < rows; i++ {
		copy(reversed.data[i*16:(i+1)*16], real.data[(rows-1-i)*16:(rows-i)*16])
	}

	discA.zeroGrad()
	statsA, err := discriminatorLoss(genA, discA, criterion, noiseA, real)
	if err != nil {
		t.Fatalf("discriminatorLoss failed: %v", err)
	}
	discB.zeroGrad()
	statsB, err := discriminatorLoss(genB, discB, criterion, noiseB, reversed)
	if err != nil {
		t.Fatalf("discriminatorLoss failed: %v", err)
	}

	if math.Abs(statsA.loss-statsB.loss) > 1e-9 {
		t.Fatalf("loss depends on row order: %v vs %v", statsA.loss, statsB.loss)
	}
	if math.Abs(statsA.dReal-statsB.dReal) > 1e-9 {
		t.Fatalf("d_real depends on row order: %v vs %v", statsA.dReal, statsB.dReal)
	}
}
