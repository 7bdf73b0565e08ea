package gan

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ImgSize is the side length of an MNIST digit.
const ImgSize = 28

// IDX wire-format magic numbers, big-endian.
const (
	imageMagic = 2051
	labelMagic = 2049
)

// mirrorURL serves the canonical files. The original yann.lecun.com host
// rate-limits and often rejects plain clients.
const mirrorURL = "https://ossci-datasets.s3.amazonaws.com/mnist/"

const (
	trainImagesFile = "train-images-idx3-ubyte.gz"
	trainLabelsFile = "train-labels-idx1-ubyte.gz"
	testImagesFile  = "t10k-images-idx3-ubyte.gz"
	testLabelsFile  = "t10k-labels-idx1-ubyte.gz"
)

// sha256 digests of the compressed canonical files.
var mnistDigests = map[string]string{
	trainImagesFile: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	trainLabelsFile: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
	testImagesFile:  "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	testLabelsFile:  "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
}

// Dataset holds images as a [N, 1, 28, 28] tensor scaled to [0, 1] and the
// matching integer labels. The trainer ignores labels; they ride along for
// inspection and tooling.
type Dataset struct {
	Images *tensor
	Labels []int
}

// Batch pairs a gathered image batch with its labels.
type Batch struct {
	Images *tensor // [B, 1, 28, 28]
	Labels []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return d.Images.shape[0] }

// LoadMNIST reads the two training files from dir, verifying each digest
// before parsing.
func LoadMNIST(dir string) (*Dataset, error) {
	imgPath := filepath.Join(dir, trainImagesFile)
	if err := verifyDigest(imgPath, mnistDigests[trainImagesFile]); err != nil {
		return nil, err
	}
	raw, err := readIDX(imgPath)
	if err != nil {
		return nil, err
	}
	images, err := parseImages(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", trainImagesFile)
	}

	lblPath := filepath.Join(dir, trainLabelsFile)
	if err := verifyDigest(lblPath, mnistDigests[trainLabelsFile]); err != nil {
		return nil, err
	}
	raw, err = readIDX(lblPath)
	if err != nil {
		return nil, err
	}
	labels, err := parseLabels(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", trainLabelsFile)
	}

	if images.shape[0] != len(labels) {
		return nil, errors.Errorf("gan: %d images but %d labels", images.shape[0], len(labels))
	}
	return &Dataset{Images: images, Labels: labels}, nil
}

// Synthetic builds a dataset of uniform random images, for smoke runs and
// tests where the real corpus is unavailable or unwanted.
func Synthetic(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	images := newTensor(n, 1, ImgSize, ImgSize)
	images.fillRandUniform(0, 1, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = rng.Intn(10)
	}
	return &Dataset{Images: images, Labels: labels}
}

// Download fetches any missing canonical file from the mirror into dir.
// Files already present with a correct digest are left alone. Each download
// is digest-verified in memory and installed with an atomic rename, so a
// killed download never leaves a corrupt file under the canonical name.
func Download(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "gan: create dataset dir")
	}
	for _, name := range []string{trainImagesFile, trainLabelsFile, testImagesFile, testLabelsFile} {
		path := filepath.Join(dir, name)
		if err := verifyDigest(path, mnistDigests[name]); err == nil {
			continue
		}
		if err := fetchFile(ctx, mirrorURL+name, path, mnistDigests[name]); err != nil {
			return err
		}
	}
	return nil
}

// batch gathers rows perm[start : start+size] into a fresh Batch. The
// final batch of an epoch may be short.
func (d *Dataset) batch(perm []int, start, size int) Batch {
	end := minInt(start+size, len(perm))
	rows := end - start
	px := ImgSize * ImgSize

	images := newTensor(rows, 1, ImgSize, ImgSize)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		src := perm[start+i]
		copy(images.data[i*px:(i+1)*px], d.Images.data[src*px:(src+1)*px])
		labels[i] = d.Labels[src]
	}
	return Batch{Images: images, Labels: labels}
}

// batchesPerEpoch is a ceiling division: 60000 samples at batch size 128
// give 468 full batches plus one short batch of 96, so 469.
func batchesPerEpoch(n, batchSize int) int {
	return (n + batchSize - 1) / batchSize
}

func verifyDigest(path, want string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "gan: read dataset file")
	}
	sum := sha256.Sum256(raw)
	if got := fmt.Sprintf("%x", sum); got != want {
		return errors.Errorf("gan: digest mismatch for %s: got %s, want %s", filepath.Base(path), got, want)
	}
	return nil
}

func readIDX(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "gan: read dataset file")
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "gan: gunzip %s", filepath.Base(path))
	}
	defer gz.Close()
	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, errors.Wrapf(err, "gan: gunzip %s", filepath.Base(path))
	}
	return data, nil
}

func parseImages(data []byte) (*tensor, error) {
	if len(data) < 16 {
		return nil, errors.New("gan: image file truncated")
	}
	magic := binary.BigEndian.Uint32(data[0:4])
	if magic != imageMagic {
		return nil, errors.Errorf("gan: bad image magic %d, want %d", magic, imageMagic)
	}
	count := int(binary.BigEndian.Uint32(data[4:8]))
	rows := int(binary.BigEndian.Uint32(data[8:12]))
	cols := int(binary.BigEndian.Uint32(data[12:16]))
	if rows != ImgSize || cols != ImgSize {
		return nil, errors.Errorf("gan: image geometry %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	pixels := data[16:]
	if len(pixels) != count*rows*cols {
		return nil, errors.Errorf("gan: image file has %d pixel bytes, want %d", len(pixels), count*rows*cols)
	}

	images := newTensor(count, 1, ImgSize, ImgSize)
	for i, p := range pixels {
		images.data[i] = float64(p) / 255.0
	}
	return images, nil
}

func parseLabels(data []byte) ([]int, error) {
	if len(data) < 8 {
		return nil, errors.New("gan: label file truncated")
	}
	magic := binary.BigEndian.Uint32(data[0:4])
	if magic != labelMagic {
		return nil, errors.Errorf("gan: bad label magic %d, want %d", magic, labelMagic)
	}
	count := int(binary.BigEndian.Uint32(data[4:8]))
	body := data[8:]
	if len(body) != count {
		return nil, errors.Errorf("gan: label file has %d entries, header says %d", len(body), count)
	}

	labels := make([]int, count)
	for i, b := range body {
		labels[i] = int(b)
	}
	return labels, nil
}

func fetchFile(ctx context.Context, url, path, digest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "gan: build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "gan: fetch %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("gan: fetch %s: %s", url, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "gan: fetch %s", url)
	}
	sum := sha256.Sum256(raw)
	if got := fmt.Sprintf("%x", sum); got != digest {
		return errors.Errorf("gan: digest mismatch for %s: got %s, want %s", url, got, digest)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "gan: write dataset file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "gan: install dataset file")
	}
	return nil
}
