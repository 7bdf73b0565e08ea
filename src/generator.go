package gan

// Generator maps latent noise to flattened images with every pixel strictly
// inside (0, 1).
//
// The stack follows the classic fully connected MNIST recipe: four hidden
// blocks of doubling width h, 2h, 4h, 8h, each a linear transform followed
// by batch normalization, LeakyReLU and dropout, then a sigmoid output
// layer. The sigmoid is what pins the open-interval output range.
type Generator struct {
	*Sequential
	latentDim int
	outputDim int
}

func NewGenerator(config GeneratorConfig) (*Generator, error) {
	if err := ValidateGeneratorConfig(config); err != nil {
		return nil, err
	}

	builder := NewSequential(NetworkConfig{Seed: config.Seed})
	width := config.HiddenDim
	for i := 0; i < 4; i++ {
		builder.
			AddLayer(Dense(width).
				WithActivation(Linear()).
				WithInitializer(HeNormal(1.0)).
				WithBiasInitializer(Zeros()).
				WithBias(true).
				Build()).
			AddLayer(BatchNorm(config.BNEpsilon, config.BNMomentum).Build()).
			AddLayer(Activate(LeakyReLU(config.NegativeSlope)).Build()).
			AddLayer(Dropout(config.DropoutRate).Build())
		width *= 2
	}
	builder.AddLayer(Dense(config.OutputDim).
		WithActivation(Sigmoid()).
		WithInitializer(XavierNormal(1.0)).
		WithBiasInitializer(Zeros()).
		WithBias(true).
		Build())

	net, err := builder.Build([]int{config.LatentDim})
	if err != nil {
		return nil, err
	}

	return &Generator{
		Sequential: net,
		latentDim:  config.LatentDim,
		outputDim:  config.OutputDim,
	}, nil
}

// Sample runs the generator in evaluation mode on n fresh latent draws.
// BatchNorm normalizes with its running statistics and dropout is disabled,
// so output quality does not depend on how the batch is composed.
func (g *Generator) Sample(noise *noiseSource, n int) (*tensor, error) {
	return g.forward(noise.sample(n), false)
}
