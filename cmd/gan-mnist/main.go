package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/cpuid/v2"

	gan "github.com/parhamzm/GAN-Intro/src"
)

func buildOptimizer(name string, lr float64) gan.Optimizer {
	switch name {
	case "adam":
		return gan.Adam(gan.AdamConfig{
			LR:          lr,
			Beta1:       0.9,
			Beta2:       0.999,
			Epsilon:     1e-8,
			WeightDecay: 0.0,
		})
	case "sgd":
		return gan.SGD(gan.SGDConfig{
			LR:          lr,
			Momentum:    0.9,
			Dampening:   0.0,
			WeightDecay: 0.0,
			Nesterov:    false,
		})
	}
	return nil
}

func main() {
	epochs := flag.Int("epochs", 200, "training epochs")
	batch := flag.Int("batch", 128, "batch size")
	zdim := flag.Int("zdim", 64, "latent dimension")
	hidden := flag.Int("hidden", 128, "base hidden width")
	lr := flag.Float64("lr", 0.00001, "learning rate for both networks")
	display := flag.Int("display", 500, "steps between progress reports")
	compareEvery := flag.Int("compare-every", 10, "epochs between real/fake comparison images, 0 disables")
	seed := flag.Int64("seed", 0, "PRNG seed")
	optimizer := flag.String("optimizer", "adam", "optimizer: adam or sgd")
	dataDir := flag.String("data", "data/mnist", "MNIST directory")
	outDir := flag.String("out", "out", "artifact output directory, empty disables")
	download := flag.Bool("download", false, "download missing MNIST files before training")
	synthetic := flag.Int("synthetic", 0, "train on N synthetic random samples instead of MNIST")
	debug := flag.Bool("debug", false, "per-step tensor health checks")

	flag.Parse()

	gan.SetDebug(*debug)

	log.Printf("cpu=%q cores=%d avx2=%v",
		cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, cpuid.CPU.Supports(cpuid.AVX2))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var data *gan.Dataset
	if *synthetic > 0 {
		data = gan.Synthetic(*synthetic, *seed)
		log.Printf("dataset=synthetic samples=%d", *synthetic)
	} else {
		if *download {
			if err := gan.Download(ctx, *dataDir); err != nil {
				log.Fatalf("download failed: %v", err)
			}
		}
		var err error
		data, err = gan.LoadMNIST(*dataDir)
		if err != nil {
			log.Fatalf("failed to load dataset: %v", err)
		}
		log.Printf("dataset=mnist samples=%d", data.Len())
	}

	genOpt := buildOptimizer(*optimizer, *lr)
	discOpt := buildOptimizer(*optimizer, *lr)
	if genOpt == nil {
		log.Fatalf("unknown optimizer %q, want adam or sgd", *optimizer)
	}

	session, err := gan.NewSession(data, gan.SessionConfig{
		Epochs:        *epochs,
		BatchSize:     *batch,
		DisplayStep:   *display,
		CompareEvery:  *compareEvery,
		LatentDim:     *zdim,
		HiddenDim:     *hidden,
		NegativeSlope: 0.2,
		DropoutRate:   0.3,
		BNEpsilon:     1e-5,
		BNMomentum:    0.9,
		SampleRows:    5,
		SampleCols:    5,
		SampleScale:   4,
		Seed:          *seed,
		OutDir:        *outDir,
		GenOptimizer:  genOpt,
		DiscOptimizer: discOpt,
		Criterion: gan.BCEWithLogits(gan.BCEWithLogitsConfig{
			Reduction: "mean",
		}),
	})
	if err != nil {
		log.Fatalf("invalid session: %v", err)
	}

	log.Printf("generator:\n%s", session.Generator().Summary())
	log.Printf("discriminator:\n%s", session.Discriminator().Summary())

	if err := session.Run(ctx); err != nil {
		log.Fatalf("training failed: %v", err)
	}
	log.Printf("done: intervals=%d artifacts=%s", len(session.History().Steps), *outDir)
}
