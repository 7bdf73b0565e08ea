package gan

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// gridGap is the separator width between tiles, in unscaled pixels.
const gridGap = 2

// renderGrid tiles the first rows*cols images into a grid with a gray
// separator, clamping every pixel to [0, 1] before quantization, then
// upscales with nearest-neighbor so the digits stay crisp instead of
// smeared.
func renderGrid(images *tensor, rows, cols, scale int) (*image.Gray, error) {
	n := images.shape[0]
	if n < rows*cols {
		return nil, errors.Errorf("gan: grid needs %d images, got %d", rows*cols, n)
	}
	px := images.size() / n
	if px != ImgSize*ImgSize {
		return nil, errors.Errorf("gan: grid images have %d pixels per sample, want %d", px, ImgSize*ImgSize)
	}

	width := cols*ImgSize + (cols-1)*gridGap
	height := rows*ImgSize + (rows-1)*gridGap
	base := image.NewGray(image.Rect(0, 0, width, height))
	for i := range base.Pix {
		base.Pix[i] = 128
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			offX := c * (ImgSize + gridGap)
			offY := r * (ImgSize + gridGap)
			for y := 0; y < ImgSize; y++ {
				for x := 0; x < ImgSize; x++ {
					v := clamp01(images.data[idx*px+y*ImgSize+x])
					base.SetGray(offX+x, offY+y, color.Gray{Y: uint8(v*255 + 0.5)})
				}
			}
		}
	}

	if scale <= 1 {
		return base, nil
	}
	dst := image.NewGray(image.Rect(0, 0, width*scale, height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// SaveGrid renders a sample grid and writes it as a PNG.
func SaveGrid(images *tensor, rows, cols, scale int, path string) error {
	img, err := renderGrid(images, rows, cols, scale)
	if err != nil {
		return err
	}
	return writePNG(img, path)
}

// SaveComparison writes real and generated grids side by side in one PNG,
// real on the left.
func SaveComparison(real, fake *tensor, rows, cols, scale int, path string) error {
	left, err := renderGrid(real, rows, cols, scale)
	if err != nil {
		return err
	}
	right, err := renderGrid(fake, rows, cols, scale)
	if err != nil {
		return err
	}

	gap := 2 * gridGap * scale
	width := left.Bounds().Dx() + gap + right.Bounds().Dx()
	height := left.Bounds().Dy()
	combined := image.NewGray(image.Rect(0, 0, width, height))
	for i := range combined.Pix {
		combined.Pix[i] = 128
	}

	xdraw.Draw(combined, left.Bounds(), left, image.Point{}, xdraw.Src)
	rightRect := image.Rect(left.Bounds().Dx()+gap, 0, width, height)
	xdraw.Draw(combined, rightRect, right, image.Point{}, xdraw.Src)

	return writePNG(combined, path)
}

// SaveAnimation writes the frames as an animated GIF over a 256-level gray
// palette, delayCS hundredths of a second per frame, looping forever.
func SaveAnimation(frames []*image.Gray, delayCS int, path string) error {
	if len(frames) == 0 {
		return errors.New("gan: no frames to animate")
	}

	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i)}
	}

	anim := &gif.GIF{}
	for _, frame := range frames {
		// Palette index i is gray level i, so the quantization is exact.
		p := image.NewPaletted(frame.Bounds(), pal)
		b := frame.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				p.SetColorIndex(x, y, frame.GrayAt(x, y).Y)
			}
		}
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delayCS)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "gan: create animation file")
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return errors.Wrap(err, "gan: encode gif")
	}
	return errors.Wrap(f.Close(), "gan: close animation file")
}

func writePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "gan: create image file")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "gan: encode png")
	}
	return errors.Wrap(f.Close(), "gan: close image file")
}
