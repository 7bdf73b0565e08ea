// Package gan trains a generative adversarial pair on MNIST digits with a
// small hand-rolled backprop engine.
//
// The API is power-user focused with explicit configuration and no hidden
// defaults. Every hyperparameter must be specified.
//
// Basic usage:
//
//	data, err := gan.LoadMNIST("data/mnist")
//	if err != nil {
//		log.Fatalf("load: %v", err)
//	}
//
//	session, err := gan.NewSession(data, gan.SessionConfig{
//		Epochs:        200,
//		BatchSize:     128,
//		DisplayStep:   500,
//		CompareEvery:  10,
//		LatentDim:     64,
//		HiddenDim:     128,
//		NegativeSlope: 0.2,
//		DropoutRate:   0.3,
//		BNEpsilon:     1e-5,
//		BNMomentum:    0.9,
//		SampleRows:    5,
//		SampleCols:    5,
//		SampleScale:   4,
//		Seed:          0,
//		OutDir:        "out",
//		GenOptimizer: gan.Adam(gan.AdamConfig{
//			LR:          0.00001,
//			Beta1:       0.9,
//			Beta2:       0.999,
//			Epsilon:     1e-8,
//			WeightDecay: 0.0,
//		}),
//		DiscOptimizer: gan.Adam(gan.AdamConfig{
//			LR:          0.00001,
//			Beta1:       0.9,
//			Beta2:       0.999,
//			Epsilon:     1e-8,
//			WeightDecay: 0.0,
//		}),
//		Criterion: gan.BCEWithLogits(gan.BCEWithLogitsConfig{
//			Reduction: "mean",
//		}),
//	})
//	if err != nil {
//		log.Fatalf("session: %v", err)
//	}
//
//	if err := session.Run(context.Background()); err != nil {
//		log.Fatalf("train: %v", err)
//	}
package gan

// Version of the library
const Version = "1.0.0"

// DebugMode enables per-step tensor health scans and verbose logging
var DebugMode = false

// SetDebug enables or disables debug mode
func SetDebug(enabled bool) {
	DebugMode = enabled
}
