package gan

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Layer is the base interface for all layers. forward caches whatever the
// matching backward pass needs, so backward must always correspond to the
// most recent forward call on the layer. Parameter gradients accumulate
// across backward calls; only an explicit zero on the gradient tensors
// clears them.
type Layer interface {
	forward(input *tensor, training bool) (*tensor, error)
	backward(gradOutput *tensor) (*tensor, error)
	parameters() []*tensor
	gradients() []*tensor
	build(inputShape []int, rng *rand.Rand) error
	outputShape() []int
	name() string
}

// DenseLayer - fully connected layer with a fused activation
type DenseLayer struct {
	units       int
	activation  Activation
	initializer Initializer
	biasInit    Initializer
	useBias     bool
	weights     *tensor
	bias        *tensor
	input       *tensor
	preAct      *tensor
	output      *tensor
	gradW       *tensor
	gradB       *tensor
	inputShape  []int
	built       bool
}

// DenseBuilder for fluent API
type DenseBuilder struct {
	layer *DenseLayer
}

func Dense(units int) *DenseBuilder {
	return &DenseBuilder{
		layer: &DenseLayer{
			units: units,
		},
	}
}

func (b *DenseBuilder) WithActivation(act Activation) *DenseBuilder {
	b.layer.activation = act
	return b
}

func (b *DenseBuilder) WithInitializer(init Initializer) *DenseBuilder {
	b.layer.initializer = init
	return b
}

func (b *DenseBuilder) WithBiasInitializer(init Initializer) *DenseBuilder {
	b.layer.biasInit = init
	return b
}

func (b *DenseBuilder) WithBias(useBias bool) *DenseBuilder {
	b.layer.useBias = useBias
	return b
}

func (b *DenseBuilder) Build() Layer {
	return b.layer
}

func (d *DenseLayer) build(inputShape []int, rng *rand.Rand) error {
	if len(inputShape) == 0 {
		return errors.New("gan: DenseLayer requires non-empty input shape")
	}
	if d.initializer == nil {
		return errors.New("gan: DenseLayer requires initializer - use WithInitializer()")
	}
	if d.activation == nil {
		return errors.New("gan: DenseLayer requires activation - use WithActivation()")
	}
	if d.useBias && d.biasInit == nil {
		return errors.New("gan: DenseLayer with bias requires bias initializer - use WithBiasInitializer()")
	}

	fanIn := inputShape[len(inputShape)-1]
	d.inputShape = inputShape

	d.weights = newTensor(fanIn, d.units)
	d.initializer.initialize(d.weights, fanIn, d.units, rng)

	d.gradW = newTensor(fanIn, d.units)

	if d.useBias {
		d.bias = newTensor(d.units)
		d.biasInit.initialize(d.bias, fanIn, d.units, rng)
		d.gradB = newTensor(d.units)
	}

	d.built = true
	return nil
}

func (d *DenseLayer) forward(input *tensor, training bool) (*tensor, error) {
	if !d.built {
		return nil, errors.New("gan: layer not built - call Build() first")
	}
	batchSize := input.shape[0]
	inputDim := input.shape[1]

	if inputDim != d.weights.shape[0] {
		return nil, errors.Errorf("gan: dense input has %d features, layer expects %d", inputDim, d.weights.shape[0])
	}

	d.input = input
	d.preAct = newTensor(batchSize, d.units)
	d.output = newTensor(batchSize, d.units)

	// Y = act(X @ W + b)
	matmul(input, d.weights, d.preAct)
	if d.useBias {
		addVec(d.preAct, d.bias)
	}
	d.activation.forward(d.preAct, d.output)

	return d.output, nil
}

func (d *DenseLayer) backward(gradOutput *tensor) (*tensor, error) {
	if d.input == nil {
		return nil, errors.New("gan: backward called before forward")
	}

	// Gradient through the activation
	gradPre := newTensor(gradOutput.shape...)
	d.activation.backward(d.preAct, gradOutput, gradPre)

	// dL/dW += X^T @ dL/dpre. The loss gradient already carries the
	// reduction factor, so no batch scaling happens here.
	gw := newTensor(d.weights.shape...)
	matmulTransA(d.input, gradPre, gw)
	accumulate(d.gradW, gw)

	// dL/db += sum(dL/dpre, axis=0)
	if d.useBias {
		gb := newTensor(d.units)
		sumAxis0(gradPre, gb)
		accumulate(d.gradB, gb)
	}

	// dL/dX = dL/dpre @ W^T
	gradInput := newTensor(d.input.shape...)
	matmulTransB(gradPre, d.weights, gradInput)

	return gradInput, nil
}

func (d *DenseLayer) parameters() []*tensor {
	if d.useBias {
		return []*tensor{d.weights, d.bias}
	}
	return []*tensor{d.weights}
}

func (d *DenseLayer) gradients() []*tensor {
	if d.useBias {
		return []*tensor{d.gradW, d.gradB}
	}
	return []*tensor{d.gradW}
}

func (d *DenseLayer) outputShape() []int {
	return []int{d.units}
}

func (d *DenseLayer) name() string { return "dense" }

// ActivationLayer applies an activation on its own, for stacks where the
// activation sits after a normalization layer instead of fused into the
// affine transform.
type ActivationLayer struct {
	act   Activation
	input *tensor
	built bool
}

type ActivationBuilder struct {
	layer *ActivationLayer
}

func Activate(act Activation) *ActivationBuilder {
	return &ActivationBuilder{
		layer: &ActivationLayer{
			act: act,
		},
	}
}

func (b *ActivationBuilder) Build() Layer {
	return b.layer
}

func (a *ActivationLayer) build(inputShape []int, rng *rand.Rand) error {
	if a.act == nil {
		return errors.New("gan: ActivationLayer requires an activation")
	}
	a.built = true
	return nil
}

func (a *ActivationLayer) forward(input *tensor, training bool) (*tensor, error) {
	if !a.built {
		return nil, errors.New("gan: layer not built - call Build() first")
	}
	a.input = input
	output := newTensor(input.shape...)
	a.act.forward(input, output)
	return output, nil
}

func (a *ActivationLayer) backward(gradOutput *tensor) (*tensor, error) {
	if a.input == nil {
		return nil, errors.New("gan: backward called before forward")
	}
	gradInput := newTensor(gradOutput.shape...)
	a.act.backward(a.input, gradOutput, gradInput)
	return gradInput, nil
}

func (a *ActivationLayer) parameters() []*tensor { return nil }
func (a *ActivationLayer) gradients() []*tensor  { return nil }
func (a *ActivationLayer) outputShape() []int    { return nil }
func (a *ActivationLayer) name() string          { return a.act.name() }

// DropoutLayer - randomly zeros elements during training, identity during
// evaluation. Uses inverted scaling so eval needs no rescale.
type DropoutLayer struct {
	rate  float64
	mask  *tensor
	rng   *rand.Rand
	built bool
}

type DropoutBuilder struct {
	layer *DropoutLayer
}

func Dropout(rate float64) *DropoutBuilder {
	return &DropoutBuilder{
		layer: &DropoutLayer{
			rate: rate,
		},
	}
}

func (b *DropoutBuilder) Build() Layer {
	return b.layer
}

func (d *DropoutLayer) build(inputShape []int, rng *rand.Rand) error {
	if d.rate < 0 || d.rate >= 1 {
		return errors.Errorf("gan: dropout rate must be in [0, 1), got %v", d.rate)
	}
	d.rng = rng
	d.built = true
	return nil
}

func (d *DropoutLayer) forward(input *tensor, training bool) (*tensor, error) {
	if !training {
		return input.clone(), nil
	}

	output := newTensor(input.shape...)
	d.mask = newTensor(input.shape...)

	scale := 1.0 / (1.0 - d.rate)
	for i := range input.data {
		if d.rng.Float64() >= d.rate {
			d.mask.data[i] = scale
			output.data[i] = input.data[i] * scale
		} else {
			d.mask.data[i] = 0
			output.data[i] = 0
		}
	}
	return output, nil
}

func (d *DropoutLayer) backward(gradOutput *tensor) (*tensor, error) {
	if d.mask == nil {
		return nil, errors.New("gan: backward called before training-mode forward")
	}
	gradInput := newTensor(gradOutput.shape...)
	elemMul(gradOutput, d.mask, gradInput)
	return gradInput, nil
}

func (d *DropoutLayer) parameters() []*tensor { return nil }
func (d *DropoutLayer) gradients() []*tensor  { return nil }
func (d *DropoutLayer) outputShape() []int    { return nil }
func (d *DropoutLayer) name() string          { return "dropout" }
