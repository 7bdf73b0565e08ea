package gan

import "math"

// Loss computes loss and gradients. The gradient carries the reduction
// factor, so the layers below apply the pure chain rule with no batch
// scaling of their own.
type Loss interface {
	compute(pred, target *tensor) float64
	gradient(pred, target *tensor, gradOut *tensor)
	name() string
}

// sigmoid evaluates the logistic function without overflowing either tail.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1.0 / (1.0 + math.Exp(-v))
	}
	expV := math.Exp(v)
	return expV / (1.0 + expV)
}

// BCEWithLogitsLoss - binary cross-entropy evaluated on raw logits.
// Fusing the sigmoid into the loss keeps value and gradient finite for
// logits of any magnitude, where sigmoid-then-log saturates.
type BCEWithLogitsLoss struct {
	Reduction string // "mean" or "sum"
}

type BCEWithLogitsConfig struct {
	Reduction string
}

func BCEWithLogits(config BCEWithLogitsConfig) Loss {
	return &BCEWithLogitsLoss{Reduction: config.Reduction}
}

// compute uses the form max(x,0) - x*z + log1p(exp(-|x|)), which never
// exponentiates a positive argument.
func (b *BCEWithLogitsLoss) compute(pred, target *tensor) float64 {
	sum := 0.0
	for i := range pred.data {
		x := pred.data[i]
		z := target.data[i]
		sum += math.Max(x, 0) - x*z + math.Log1p(math.Exp(-math.Abs(x)))
	}
	if b.Reduction == "mean" {
		return sum / float64(len(pred.data))
	}
	return sum
}

func (b *BCEWithLogitsLoss) gradient(pred, target *tensor, gradOut *tensor) {
	scale := 1.0
	if b.Reduction == "mean" {
		scale = 1.0 / float64(len(pred.data))
	}
	for i := range pred.data {
		gradOut.data[i] = scale * (sigmoid(pred.data[i]) - target.data[i])
	}
}

func (b *BCEWithLogitsLoss) name() string { return "bce_with_logits" }
