package gan

import (
	"math/rand"
	"testing"
)

func smallDiscriminatorConfig(seed int64) DiscriminatorConfig {
	return DiscriminatorConfig{
		InputDim:      16,
		HiddenDim:     4,
		NegativeSlope: 0.2,
		Seed:          seed,
	}
}

func TestDiscriminatorLogitShape(t *testing.T) {
	disc, err := NewDiscriminator(smallDiscriminatorConfig(1))
	if err != nil {
		t.Fatalf("NewDiscriminator failed: %v", err)
	}

	x := newTensor(6, 16)
	x.fillRandNorm(0, 1, rand.New(rand.NewSource(2)))
	out, err := disc.forward(x, true)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	if out.shape[0] != 6 || out.shape[1] != 1 {
		t.Fatalf("expected shape [6 1], got %v", out.shape)
	}
}

func TestDiscriminatorHeadIsLinear(t *testing.T) {
	disc, err := NewDiscriminator(smallDiscriminatorConfig(1))
	if err != nil {
		t.Fatalf("NewDiscriminator failed: %v", err)
	}

	// widths 4h, 2h, h then the logit head
	if len(disc.layers) != 4 {
		t.Fatalf("expected 4 layers, got %d", len(disc.layers))
	}
	widths := []int{16, 8, 4, 1}
	for i, w := range widths {
		dense := disc.layers[i].(*DenseLayer)
		if dense.units != w {
			t.Fatalf("layer %d width: expected %d, got %d", i, w, dense.units)
		}
	}
	head := disc.layers[3].(*DenseLayer)
	if head.activation.name() != "linear" {
		t.Fatalf("head must stay linear, got %s", head.activation.name())
	}
}

func TestDiscriminatorConfigValidation(t *testing.T) {
	bad := smallDiscriminatorConfig(1)
	bad.InputDim = 0
	if _, err := NewDiscriminator(bad); err == nil {
		t.Fatalf("expected error for zero input dim")
	}

	bad = smallDiscriminatorConfig(1)
	bad.NegativeSlope = 0
	if _, err := NewDiscriminator(bad); err == nil {
		t.Fatalf("expected error for zero negative slope")
	}
}
