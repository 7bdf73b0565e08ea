package gan

import (
	"context"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// animationDelayCS is the GIF frame delay in hundredths of a second.
const animationDelayCS = 30

// Session owns one adversarial training run: both networks, their
// optimizers, the criterion, the noise source, the dataset, and all
// bookkeeping. The notebook version of this walkthrough keeps this state
// in module-level variables; here it lives in one value with an explicit
// lifetime.
type Session struct {
	cfg  SessionConfig
	data *Dataset

	gen  *Generator
	disc *Discriminator

	noise      *noiseSource
	shuffleRng *rand.Rand

	genLoss  runningMean
	discLoss runningMean
	dReal    runningMean
	dFake    runningMean

	history History
	frames  []*image.Gray

	// step counts update pairs globally, not per epoch
	step int
}

// NewSession validates the config, derives the four sub-seeds from
// cfg.Seed (generator, discriminator, noise, shuffle) and builds both
// networks. A fixed seed reproduces initial parameters, noise draws and
// batch order bit for bit.
func NewSession(data *Dataset, cfg SessionConfig) (*Session, error) {
	if err := ValidateSessionConfig(cfg); err != nil {
		return nil, err
	}
	if data == nil || data.Len() == 0 {
		return nil, errors.New("gan: empty dataset")
	}
	if data.Len() < cfg.SampleRows*cfg.SampleCols {
		return nil, errors.Errorf("gan: dataset has %d samples, comparison grids need %d",
			data.Len(), cfg.SampleRows*cfg.SampleCols)
	}

	imgDim := data.Images.size() / data.Len()

	gen, err := NewGenerator(GeneratorConfig{
		LatentDim:     cfg.LatentDim,
		HiddenDim:     cfg.HiddenDim,
		OutputDim:     imgDim,
		NegativeSlope: cfg.NegativeSlope,
		DropoutRate:   cfg.DropoutRate,
		BNEpsilon:     cfg.BNEpsilon,
		BNMomentum:    cfg.BNMomentum,
		Seed:          cfg.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generator")
	}

	disc, err := NewDiscriminator(DiscriminatorConfig{
		InputDim:      imgDim,
		HiddenDim:     cfg.HiddenDim,
		NegativeSlope: cfg.NegativeSlope,
		Seed:          cfg.Seed + 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "discriminator")
	}

	return &Session{
		cfg:        cfg,
		data:       data,
		gen:        gen,
		disc:       disc,
		noise:      newNoiseSource(cfg.LatentDim, cfg.Seed+2),
		shuffleRng: rand.New(rand.NewSource(cfg.Seed + 3)),
	}, nil
}

// Generator returns the generator under training.
func (s *Session) Generator() *Generator { return s.gen }

// Discriminator returns the discriminator under training.
func (s *Session) Discriminator() *Discriminator { return s.disc }

// History returns the recorded per-interval series.
func (s *Session) History() *History { return &s.history }

// Run executes the full alternating loop. For every batch the
// discriminator updates first on a detached fake batch plus the real
// batch, then the generator updates against the just-updated
// discriminator. Cancelling ctx stops the run cleanly between batches
// with the context's error. There is no early stopping: adversarial loss
// values carry no usable convergence signal.
func (s *Session) Run(ctx context.Context) error {
	if s.cfg.OutDir != "" {
		if err := os.MkdirAll(s.cfg.OutDir, 0o755); err != nil {
			return errors.Wrap(err, "gan: create output dir")
		}
	}

	n := s.data.Len()
	batches := batchesPerEpoch(n, s.cfg.BatchSize)
	log.Printf("training start: samples=%d batch=%d batches_per_epoch=%d epochs=%d",
		n, s.cfg.BatchSize, batches, s.cfg.Epochs)

	for epoch := 1; epoch <= s.cfg.Epochs; epoch++ {
		perm := s.shuffleRng.Perm(n)
		for b := 0; b < batches; b++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.trainStep(s.data.batch(perm, b*s.cfg.BatchSize, s.cfg.BatchSize)); err != nil {
				return err
			}
			s.step++
			if s.step%s.cfg.DisplayStep == 0 {
				if err := s.display(epoch); err != nil {
					return err
				}
			}
		}
		if s.cfg.OutDir != "" && s.cfg.CompareEvery > 0 && epoch%s.cfg.CompareEvery == 0 {
			if err := s.writeComparison(perm, epoch); err != nil {
				return err
			}
		}
	}

	return s.writeArtifacts()
}

// trainStep runs one discriminator update followed by one generator
// update on a single batch and feeds the accumulators.
func (s *Session) trainStep(batch Batch) error {
	rows := batch.Images.shape[0]
	flat, err := batch.Images.view(rows, s.disc.inputDim)
	if err != nil {
		return err
	}

	s.disc.zeroGrad()
	stats, err := discriminatorLoss(s.gen, s.disc, s.cfg.Criterion, s.noise, flat)
	if err != nil {
		return err
	}
	s.cfg.DiscOptimizer.step(s.disc.parameters(), s.disc.gradients())

	s.gen.zeroGrad()
	genLoss, err := generatorLoss(s.gen, s.disc, s.cfg.Criterion, s.noise, rows)
	if err != nil {
		return err
	}
	s.cfg.GenOptimizer.step(s.gen.parameters(), s.gen.gradients())

	s.discLoss.add(stats.loss)
	s.genLoss.add(genLoss)
	s.dReal.add(stats.dReal)
	s.dFake.add(stats.dFake)
	return nil
}

// display runs at every DisplayStep boundary: log the interval means,
// record each accumulator into its own history series, snapshot a sample
// grid in evaluation mode, and reset the accumulators. snapshot() does
// the read-and-reset in one move.
func (s *Session) display(epoch int) error {
	genMean := s.genLoss.snapshot()
	discMean := s.discLoss.snapshot()
	dReal := s.dReal.snapshot()
	dFake := s.dFake.snapshot()

	log.Printf("epoch=%d step=%d gen_loss=%.4f disc_loss=%.4f d_real=%.3f d_fake=%.3f",
		epoch, s.step, genMean, discMean, dReal, dFake)
	s.history.record(s.step, genMean, discMean, dReal, dFake)

	samples, err := s.gen.Sample(s.noise, s.cfg.SampleRows*s.cfg.SampleCols)
	if err != nil {
		return err
	}
	if err := checkFinite(samples, "generator output"); err != nil {
		return err
	}
	if DebugMode {
		log.Printf("debug: samples %s", ScanTensor(samples).FormatWithRange())
	}

	frame, err := renderGrid(samples, s.cfg.SampleRows, s.cfg.SampleCols, s.cfg.SampleScale)
	if err != nil {
		return err
	}
	s.frames = append(s.frames, frame)
	return nil
}

// writeComparison puts this epoch's first real images next to fresh
// generated ones in a single PNG.
func (s *Session) writeComparison(perm []int, epoch int) error {
	count := s.cfg.SampleRows * s.cfg.SampleCols
	real := s.data.batch(perm, 0, count)
	fake, err := s.gen.Sample(s.noise, count)
	if err != nil {
		return err
	}
	path := filepath.Join(s.cfg.OutDir, fmt.Sprintf("compare_epoch_%04d.png", epoch))
	return SaveComparison(real.Images, fake, s.cfg.SampleRows, s.cfg.SampleCols, s.cfg.SampleScale, path)
}

// writeArtifacts renders the loss curves and the snapshot animation.
// Skipped entirely when OutDir is empty.
func (s *Session) writeArtifacts() error {
	if s.cfg.OutDir == "" {
		return nil
	}
	if len(s.history.Steps) > 0 {
		if err := SaveLossCurves(&s.history, filepath.Join(s.cfg.OutDir, "loss.png")); err != nil {
			return err
		}
	}
	if len(s.frames) > 0 {
		if err := SaveAnimation(s.frames, animationDelayCS, filepath.Join(s.cfg.OutDir, "progress.gif")); err != nil {
			return err
		}
		last := s.frames[len(s.frames)-1]
		if err := writePNG(last, filepath.Join(s.cfg.OutDir, "samples_final.png")); err != nil {
			return err
		}
	}
	return nil
}
