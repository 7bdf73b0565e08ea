package gan

import (
	"math"
	"testing"
)

func smallGeneratorConfig(seed int64) GeneratorConfig {
	return GeneratorConfig{
		LatentDim:     8,
		HiddenDim:     4,
		OutputDim:     16,
		NegativeSlope: 0.2,
		DropoutRate:   0.3,
		BNEpsilon:     1e-5,
		BNMomentum:    0.9,
		Seed:          seed,
	}
}

func TestGeneratorOutputShapeAndOpenInterval(t *testing.T) {
	gen, err := NewGenerator(smallGeneratorConfig(1))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	z := newNoiseSource(8, 2).sample(6)
	out, err := gen.forward(z, true)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	if out.shape[0] != 6 || out.shape[1] != 16 {
		t.Fatalf("expected shape [6 16], got %v", out.shape)
	}
	for i, v := range out.data {
		if !(v > 0 && v < 1) {
			t.Fatalf("element %d out of open interval (0,1): %v", i, v)
		}
	}
}

func TestGeneratorLayerStack(t *testing.T) {
	gen, err := NewGenerator(smallGeneratorConfig(1))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	// four blocks of dense/batchnorm/activation/dropout plus the output head
	if len(gen.layers) != 17 {
		t.Fatalf("expected 17 layers, got %d", len(gen.layers))
	}

	widths := []int{4, 8, 16, 32}
	for i, w := range widths {
		dense := gen.layers[i*4].(*DenseLayer)
		if dense.units != w {
			t.Fatalf("block %d width: expected %d, got %d", i, w, dense.units)
		}
	}
	head := gen.layers[16].(*DenseLayer)
	if head.units != 16 {
		t.Fatalf("head width: expected 16, got %d", head.units)
	}
	if head.activation.name() != "sigmoid" {
		t.Fatalf("head activation: expected sigmoid, got %s", head.activation.name())
	}
}

func TestGeneratorSampleUsesEvalMode(t *testing.T) {
	gen, err := NewGenerator(smallGeneratorConfig(3))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	// identical generators and noise sources must sample identically:
	// eval mode leaves no dropout randomness in the path
	genB, err := NewGenerator(smallGeneratorConfig(3))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	a, err := gen.Sample(newNoiseSource(8, 7), 5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	b, err := genB.Sample(newNoiseSource(8, 7), 5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	for i := range a.data {
		if math.Float64bits(a.data[i]) != math.Float64bits(b.data[i]) {
			t.Fatalf("element %d differs across identical generators", i)
		}
	}
}

func TestGeneratorConfigValidation(t *testing.T) {
	bad := smallGeneratorConfig(1)
	bad.LatentDim = 0
	if _, err := NewGenerator(bad); err == nil {
		t.Fatalf("expected error for zero latent dim")
	}

	bad = smallGeneratorConfig(1)
	bad.DropoutRate = 1.0
	if _, err := NewGenerator(bad); err == nil {
		t.Fatalf("expected error for dropout rate 1.0")
	}

	bad = smallGeneratorConfig(1)
	bad.BNEpsilon = 0
	if _, err := NewGenerator(bad); err == nil {
		t.Fatalf("expected error for zero epsilon")
	}
}
