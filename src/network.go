package gan

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
)

// Network maps batches to batches and can push a loss gradient back through
// itself. backward must follow the forward pass it differentiates, because
// layers cache activations from the most recent forward only. Parameter
// gradients accumulate across backward calls until zeroGrad.
type Network interface {
	forward(input *tensor, training bool) (*tensor, error)
	backward(gradOutput *tensor) (*tensor, error)
	zeroGrad()
	parameters() []*tensor
	gradients() []*tensor
}

// Sequential is an ordered stack of layers trained as one unit.
type Sequential struct {
	layers     []Layer
	rng        *rand.Rand
	inputShape []int
	built      bool
}

// SequentialBuilder for fluent API
type SequentialBuilder struct {
	network *Sequential
}

func NewSequential(config NetworkConfig) *SequentialBuilder {
	return &SequentialBuilder{
		network: &Sequential{
			layers: make([]Layer, 0),
			rng:    rand.New(rand.NewSource(config.Seed)),
		},
	}
}

// AddLayer appends a layer to the stack
func (b *SequentialBuilder) AddLayer(layer Layer) *SequentialBuilder {
	b.network.layers = append(b.network.layers, layer)
	return b
}

// Build threads the input shape through the stack and initializes every
// layer's parameters from the network rng, in order. Layers that preserve
// shape report a nil outputShape and the running shape passes through them.
func (b *SequentialBuilder) Build(inputShape []int) (*Sequential, error) {
	if len(b.network.layers) == 0 {
		return nil, errors.New("gan: network must have at least one layer")
	}
	if len(inputShape) == 0 {
		return nil, errors.New("gan: inputShape must be specified")
	}

	b.network.inputShape = inputShape

	currentShape := inputShape
	for i, layer := range b.network.layers {
		if err := layer.build(currentShape, b.network.rng); err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, layer.name())
		}
		if outShape := layer.outputShape(); outShape != nil {
			currentShape = outShape
		}
	}

	b.network.built = true
	return b.network, nil
}

func (s *Sequential) forward(input *tensor, training bool) (*tensor, error) {
	if !s.built {
		return nil, errors.New("gan: network not built - call Build() first")
	}
	out := input
	var err error
	for i, layer := range s.layers {
		out, err = layer.forward(out, training)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, layer.name())
		}
	}
	return out, nil
}

// backward propagates gradOutput through the stack in reverse and returns
// the gradient with respect to the network input. The returned tensor is
// what lets a discriminator pass hand its input gradient to the generator.
func (s *Sequential) backward(gradOutput *tensor) (*tensor, error) {
	if !s.built {
		return nil, errors.New("gan: network not built - call Build() first")
	}
	grad := gradOutput
	var err error
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad, err = s.layers[i].backward(grad)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, s.layers[i].name())
		}
	}
	return grad, nil
}

// zeroGrad clears every accumulated parameter gradient in the stack.
func (s *Sequential) zeroGrad() {
	for _, layer := range s.layers {
		for _, g := range layer.gradients() {
			g.zero()
		}
	}
}

func (s *Sequential) parameters() []*tensor {
	var params []*tensor
	for _, layer := range s.layers {
		params = append(params, layer.parameters()...)
	}
	return params
}

func (s *Sequential) gradients() []*tensor {
	var grads []*tensor
	for _, layer := range s.layers {
		grads = append(grads, layer.gradients()...)
	}
	return grads
}

// Summary returns a human-readable table of layers and parameter counts.
func (s *Sequential) Summary() string {
	result := "Sequential\n"
	result += "====================\n"

	totalParams := 0
	for i, layer := range s.layers {
		layerParams := 0
		for _, p := range layer.parameters() {
			layerParams += p.size()
		}
		totalParams += layerParams
		result += fmt.Sprintf("Layer %d: %s - %d params\n", i+1, layer.name(), layerParams)
	}
	result += "====================\n"
	result += fmt.Sprintf("Total parameters: %d\n", totalParams)

	return result
}
