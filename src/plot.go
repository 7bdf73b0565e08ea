package gan

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveLossCurves renders both running-loss series against the global step
// axis and writes the chart as a PNG.
func SaveLossCurves(h *History, path string) error {
	if len(h.Steps) == 0 {
		return errors.New("gan: no history to plot")
	}

	p := plot.New()
	p.Title.Text = "Adversarial training loss"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "loss"

	genPts := make(plotter.XYs, len(h.Steps))
	discPts := make(plotter.XYs, len(h.Steps))
	for i, s := range h.Steps {
		genPts[i].X = float64(s)
		genPts[i].Y = h.GenLoss[i]
		discPts[i].X = float64(s)
		discPts[i].Y = h.DiscLoss[i]
	}

	genLine, err := plotter.NewLine(genPts)
	if err != nil {
		return errors.Wrap(err, "gan: build generator series")
	}
	genLine.Color = color.RGBA{B: 255, A: 255}

	discLine, err := plotter.NewLine(discPts)
	if err != nil {
		return errors.Wrap(err, "gan: build discriminator series")
	}
	discLine.Color = color.RGBA{R: 255, A: 255}

	p.Add(genLine, discLine)
	p.Legend.Add("generator", genLine)
	p.Legend.Add("discriminator", discLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "gan: save loss plot")
	}
	return nil
}
