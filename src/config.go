package gan

import "github.com/pkg/errors"

// NetworkConfig for network construction
type NetworkConfig struct {
	Seed int64
}

// GeneratorConfig describes the generator stack - ALL fields required
type GeneratorConfig struct {
	LatentDim     int
	HiddenDim     int
	OutputDim     int
	NegativeSlope float64
	DropoutRate   float64
	BNEpsilon     float64
	BNMomentum    float64
	Seed          int64
}

// DiscriminatorConfig describes the discriminator stack - ALL fields required
type DiscriminatorConfig struct {
	InputDim      int
	HiddenDim     int
	NegativeSlope float64
	Seed          int64
}

// SessionConfig holds the full adversarial training setup. OutDir empty
// disables artifact output, CompareEvery zero disables comparison images;
// every other field is required.
type SessionConfig struct {
	Epochs        int
	BatchSize     int
	DisplayStep   int
	CompareEvery  int
	LatentDim     int
	HiddenDim     int
	NegativeSlope float64
	DropoutRate   float64
	BNEpsilon     float64
	BNMomentum    float64
	SampleRows    int
	SampleCols    int
	SampleScale   int
	Seed          int64
	OutDir        string
	GenOptimizer  Optimizer
	DiscOptimizer Optimizer
	Criterion     Loss
}

// ValidateGeneratorConfig checks all required fields are set
func ValidateGeneratorConfig(cfg GeneratorConfig) error {
	if cfg.LatentDim <= 0 {
		return errors.Errorf("gan: LatentDim must be > 0, got %d", cfg.LatentDim)
	}
	if cfg.HiddenDim <= 0 {
		return errors.Errorf("gan: HiddenDim must be > 0, got %d", cfg.HiddenDim)
	}
	if cfg.OutputDim <= 0 {
		return errors.Errorf("gan: OutputDim must be > 0, got %d", cfg.OutputDim)
	}
	if cfg.NegativeSlope <= 0 {
		return errors.Errorf("gan: NegativeSlope must be > 0, got %f", cfg.NegativeSlope)
	}
	if cfg.DropoutRate < 0 || cfg.DropoutRate >= 1 {
		return errors.Errorf("gan: DropoutRate must be in [0, 1), got %f", cfg.DropoutRate)
	}
	if cfg.BNEpsilon <= 0 {
		return errors.Errorf("gan: BNEpsilon must be > 0, got %g", cfg.BNEpsilon)
	}
	if cfg.BNMomentum < 0 || cfg.BNMomentum >= 1 {
		return errors.Errorf("gan: BNMomentum must be in [0, 1), got %f", cfg.BNMomentum)
	}
	return nil
}

// ValidateDiscriminatorConfig checks all required fields are set
func ValidateDiscriminatorConfig(cfg DiscriminatorConfig) error {
	if cfg.InputDim <= 0 {
		return errors.Errorf("gan: InputDim must be > 0, got %d", cfg.InputDim)
	}
	if cfg.HiddenDim <= 0 {
		return errors.Errorf("gan: HiddenDim must be > 0, got %d", cfg.HiddenDim)
	}
	if cfg.NegativeSlope <= 0 {
		return errors.Errorf("gan: NegativeSlope must be > 0, got %f", cfg.NegativeSlope)
	}
	return nil
}

// ValidateSessionConfig checks all required fields are set
func ValidateSessionConfig(cfg SessionConfig) error {
	if cfg.Epochs <= 0 {
		return errors.Errorf("gan: Epochs must be > 0, got %d", cfg.Epochs)
	}
	if cfg.BatchSize <= 1 {
		return errors.Errorf("gan: BatchSize must be > 1, got %d", cfg.BatchSize)
	}
	if cfg.DisplayStep <= 0 {
		return errors.Errorf("gan: DisplayStep must be > 0, got %d", cfg.DisplayStep)
	}
	if cfg.CompareEvery < 0 {
		return errors.Errorf("gan: CompareEvery must be >= 0, got %d", cfg.CompareEvery)
	}
	if cfg.LatentDim <= 0 {
		return errors.Errorf("gan: LatentDim must be > 0, got %d", cfg.LatentDim)
	}
	if cfg.HiddenDim <= 0 {
		return errors.Errorf("gan: HiddenDim must be > 0, got %d", cfg.HiddenDim)
	}
	if cfg.NegativeSlope <= 0 {
		return errors.Errorf("gan: NegativeSlope must be > 0, got %f", cfg.NegativeSlope)
	}
	if cfg.DropoutRate < 0 || cfg.DropoutRate >= 1 {
		return errors.Errorf("gan: DropoutRate must be in [0, 1), got %f", cfg.DropoutRate)
	}
	if cfg.BNEpsilon <= 0 {
		return errors.Errorf("gan: BNEpsilon must be > 0, got %g", cfg.BNEpsilon)
	}
	if cfg.BNMomentum < 0 || cfg.BNMomentum >= 1 {
		return errors.Errorf("gan: BNMomentum must be in [0, 1), got %f", cfg.BNMomentum)
	}
	if cfg.SampleRows <= 0 {
		return errors.Errorf("gan: SampleRows must be > 0, got %d", cfg.SampleRows)
	}
	if cfg.SampleCols <= 0 {
		return errors.Errorf("gan: SampleCols must be > 0, got %d", cfg.SampleCols)
	}
	if cfg.SampleScale <= 0 {
		return errors.Errorf("gan: SampleScale must be > 0, got %d", cfg.SampleScale)
	}
	if cfg.GenOptimizer == nil {
		return errors.New("gan: GenOptimizer is required")
	}
	if cfg.DiscOptimizer == nil {
		return errors.New("gan: DiscOptimizer is required")
	}
	if cfg.Criterion == nil {
		return errors.New("gan: Criterion is required")
	}
	return nil
}
