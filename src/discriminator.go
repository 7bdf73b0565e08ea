package gan

// Discriminator scores flattened images with a single raw logit per sample.
// Positive means "looks real". The sigmoid lives in the loss, not here;
// keeping the head linear is what makes the fused BCE numerically stable.
//
// Three hidden blocks of halving width 4h, 2h, h, plain Dense + LeakyReLU.
// No normalization or dropout: the discriminator must give consistent
// per-sample scores whether it sees a real batch, a fake batch, or a mix.
type Discriminator struct {
	*Sequential
	inputDim int
}

func NewDiscriminator(config DiscriminatorConfig) (*Discriminator, error) {
	if err := ValidateDiscriminatorConfig(config); err != nil {
		return nil, err
	}

	builder := NewSequential(NetworkConfig{Seed: config.Seed})
	for _, width := range []int{4 * config.HiddenDim, 2 * config.HiddenDim, config.HiddenDim} {
		builder.AddLayer(Dense(width).
			WithActivation(LeakyReLU(config.NegativeSlope)).
			WithInitializer(HeNormal(1.0)).
			WithBiasInitializer(Zeros()).
			WithBias(true).
			Build())
	}
	builder.AddLayer(Dense(1).
		WithActivation(Linear()).
		WithInitializer(XavierNormal(1.0)).
		WithBiasInitializer(Zeros()).
		WithBias(true).
		Build())

	net, err := builder.Build([]int{config.InputDim})
	if err != nil {
		return nil, err
	}

	return &Discriminator{
		Sequential: net,
		inputDim:   config.InputDim,
	}, nil
}
