package gan

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLossCurvesWritesPNG(t *testing.T) {
	h := &History{}
	h.record(500, 0.9, 0.7, 0.55, 0.45)
	h.record(1000, 1.1, 0.6, 0.60, 0.40)
	h.record(1500, 1.3, 0.5, 0.65, 0.35)

	path := filepath.Join(t.TempDir(), "loss.png")
	if err := SaveLossCurves(h, path); err != nil {
		t.Fatalf("SaveLossCurves failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png decode failed: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatalf("decoded plot has empty bounds")
	}
}

func TestSaveLossCurvesRejectsEmptyHistory(t *testing.T) {
	if err := SaveLossCurves(&History{}, filepath.Join(t.TempDir(), "loss.png")); err == nil {
		t.Fatalf("expected error for empty history")
	}
}
