package gan

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// BatchNormLayer - Batch Normalization over the batch axis.
// Training mode normalizes with the current batch statistics and folds them
// into running estimates; evaluation mode normalizes with the running
// estimates alone, so a single sample produces the same output regardless
// of what else is in the batch.
type BatchNormLayer struct {
	epsilon  float64
	momentum float64

	gamma       *tensor
	beta        *tensor
	gradGamma   *tensor
	gradBeta    *tensor
	runningMean *tensor
	runningVar  *tensor

	input *tensor
	xhat  *tensor
	istd  []float64

	features   int
	inputShape []int
	built      bool
}

type BatchNormBuilder struct {
	layer *BatchNormLayer
}

// BatchNorm takes its knobs explicitly. momentum is the retention factor
// for the running statistics: running = momentum*running + (1-momentum)*batch.
func BatchNorm(epsilon, momentum float64) *BatchNormBuilder {
	return &BatchNormBuilder{
		layer: &BatchNormLayer{
			epsilon:  epsilon,
			momentum: momentum,
		},
	}
}

func (b *BatchNormBuilder) Build() Layer {
	return b.layer
}

func (bn *BatchNormLayer) build(inputShape []int, rng *rand.Rand) error {
	if len(inputShape) == 0 {
		return errors.New("gan: BatchNorm requires non-empty input shape")
	}
	if bn.epsilon <= 0 {
		return errors.Errorf("gan: BatchNorm epsilon must be positive, got %v", bn.epsilon)
	}
	if bn.momentum < 0 || bn.momentum >= 1 {
		return errors.Errorf("gan: BatchNorm momentum must be in [0, 1), got %v", bn.momentum)
	}

	bn.inputShape = inputShape
	bn.features = inputShape[len(inputShape)-1]

	bn.gamma = newTensor(bn.features)
	bn.gamma.fill(1.0)
	bn.beta = newTensor(bn.features)

	bn.gradGamma = newTensor(bn.features)
	bn.gradBeta = newTensor(bn.features)

	bn.runningMean = newTensor(bn.features)
	bn.runningVar = newTensor(bn.features)
	bn.runningVar.fill(1.0)

	bn.built = true
	return nil
}

func (bn *BatchNormLayer) forward(input *tensor, training bool) (*tensor, error) {
	if !bn.built {
		return nil, errors.New("gan: layer not built - call Build() first")
	}
	if input.shape[len(input.shape)-1] != bn.features {
		return nil, errors.Errorf("gan: batchnorm input has %d features, layer expects %d",
			input.shape[len(input.shape)-1], bn.features)
	}

	batchSize := input.shape[0]
	features := bn.features
	output := newTensor(input.shape...)

	if !training {
		for i := 0; i < batchSize; i++ {
			for j := 0; j < features; j++ {
				idx := i*features + j
				xhat := (input.data[idx] - bn.runningMean.data[j]) /
					math.Sqrt(bn.runningVar.data[j]+bn.epsilon)
				output.data[idx] = bn.gamma.data[j]*xhat + bn.beta.data[j]
			}
		}
		return output, nil
	}

	if batchSize < 2 {
		return nil, errors.Errorf("gan: batchnorm needs at least 2 samples in training mode, got %d", batchSize)
	}

	bn.input = input
	bn.xhat = newTensor(input.shape...)
	bn.istd = make([]float64, features)

	n := float64(batchSize)
	for j := 0; j < features; j++ {
		mean := 0.0
		for i := 0; i < batchSize; i++ {
			mean += input.data[i*features+j]
		}
		mean /= n

		variance := 0.0
		for i := 0; i < batchSize; i++ {
			diff := input.data[i*features+j] - mean
			variance += diff * diff
		}
		variance /= n

		istd := 1.0 / math.Sqrt(variance+bn.epsilon)
		bn.istd[j] = istd

		for i := 0; i < batchSize; i++ {
			idx := i*features + j
			xhat := (input.data[idx] - mean) * istd
			bn.xhat.data[idx] = xhat
			output.data[idx] = bn.gamma.data[j]*xhat + bn.beta.data[j]
		}

		// Running estimates track the unbiased variance.
		unbiased := variance * n / (n - 1)
		bn.runningMean.data[j] = bn.momentum*bn.runningMean.data[j] + (1-bn.momentum)*mean
		bn.runningVar.data[j] = bn.momentum*bn.runningVar.data[j] + (1-bn.momentum)*unbiased
	}

	return output, nil
}

func (bn *BatchNormLayer) backward(gradOutput *tensor) (*tensor, error) {
	if bn.input == nil {
		return nil, errors.New("gan: backward called before training-mode forward")
	}

	batchSize := gradOutput.shape[0]
	features := bn.features
	n := float64(batchSize)
	gradInput := newTensor(gradOutput.shape...)

	for j := 0; j < features; j++ {
		sumDy := 0.0
		sumDyXhat := 0.0
		for i := 0; i < batchSize; i++ {
			idx := i*features + j
			sumDy += gradOutput.data[idx]
			sumDyXhat += gradOutput.data[idx] * bn.xhat.data[idx]
		}

		bn.gradBeta.data[j] += sumDy
		bn.gradGamma.data[j] += sumDyXhat

		// dL/dx folds the mean and variance paths into one expression:
		// (gamma*istd/N) * (N*dy - sum(dy) - xhat*sum(dy*xhat))
		scale := bn.gamma.data[j] * bn.istd[j] / n
		for i := 0; i < batchSize; i++ {
			idx := i*features + j
			gradInput.data[idx] = scale *
				(n*gradOutput.data[idx] - sumDy - bn.xhat.data[idx]*sumDyXhat)
		}
	}

	return gradInput, nil
}

func (bn *BatchNormLayer) parameters() []*tensor {
	return []*tensor{bn.gamma, bn.beta}
}

func (bn *BatchNormLayer) gradients() []*tensor {
	return []*tensor{bn.gradGamma, bn.gradBeta}
}

func (bn *BatchNormLayer) outputShape() []int { return nil }

func (bn *BatchNormLayer) name() string { return "batchnorm" }
