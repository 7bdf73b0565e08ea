package gan

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func idxImagePayload(count int, fill byte) []byte {
	buf := make([]byte, 16+count*ImgSize*ImgSize)
	binary.BigEndian.PutUint32(buf[0:4], imageMagic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(count))
	binary.BigEndian.PutUint32(buf[8:12], ImgSize)
	binary.BigEndian.PutUint32(buf[12:16], ImgSize)
	for i := 16; i < len(buf); i++ {
		buf[i] = fill
	}
	return buf
}

func idxLabelPayload(labels []byte) []byte {
	buf := make([]byte, 8+len(labels))
	binary.BigEndian.PutUint32(buf[0:4], labelMagic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(labels)))
	copy(buf[8:], labels)
	return buf
}

func gzWrite(t *testing.T, path string, payload []byte) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
}

func TestParseImagesScalesPixelsToUnitRange(t *testing.T) {
	payload := idxImagePayload(2, 255)
	payload[16] = 0

	images, err := parseImages(payload)
	if err != nil {
		t.Fatalf("parseImages failed: %v", err)
	}
	if !reflect.DeepEqual(images.shape, []int{2, 1, ImgSize, ImgSize}) {
		t.Fatalf("unexpected shape %v", images.shape)
	}
	if images.data[0] != 0 {
		t.Fatalf("expected pixel 0 to scale to 0, got %v", images.data[0])
	}
	for i := 1; i < len(images.data); i++ {
		if images.data[i] != 1 {
			t.Fatalf("expected pixel %d to scale to 1, got %v", i, images.data[i])
		}
	}
}

func TestParseImagesRejectsBadInput(t *testing.T) {
	bad := idxImagePayload(1, 0)
	binary.BigEndian.PutUint32(bad[0:4], 1234)
	if _, err := parseImages(bad); err == nil {
		t.Fatalf("expected error for wrong magic")
	}

	bad = idxImagePayload(1, 0)
	binary.BigEndian.PutUint32(bad[8:12], 27)
	if _, err := parseImages(bad); err == nil {
		t.Fatalf("expected error for wrong geometry")
	}

	bad = idxImagePayload(1, 0)
	if _, err := parseImages(bad[:len(bad)-1]); err == nil {
		t.Fatalf("expected error for truncated pixel data")
	}

	if _, err := parseImages(make([]byte, 10)); err == nil {
		t.Fatalf("expected error for short header")
	}
}

func TestParseLabels(t *testing.T) {
	labels, err := parseLabels(idxLabelPayload([]byte{0, 3, 9, 5}))
	if err != nil {
		t.Fatalf("parseLabels failed: %v", err)
	}
	if !reflect.DeepEqual(labels, []int{0, 3, 9, 5}) {
		t.Fatalf("unexpected labels %v", labels)
	}

	bad := idxLabelPayload([]byte{1, 2, 3, 4})
	binary.BigEndian.PutUint32(bad[4:8], 5)
	if _, err := parseLabels(bad); err == nil {
		t.Fatalf("expected error for count mismatch")
	}

	bad = idxLabelPayload([]byte{1})
	binary.BigEndian.PutUint32(bad[0:4], 9999)
	if _, err := parseLabels(bad); err == nil {
		t.Fatalf("expected error for wrong magic")
	}
}

func TestVerifyDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	content := []byte("hello mnist")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}

	sum := sha256.Sum256(content)
	if err := verifyDigest(path, fmt.Sprintf("%x", sum)); err != nil {
		t.Fatalf("expected matching digest to pass, got %v", err)
	}
	if err := verifyDigest(path, "deadbeef"); err == nil {
		t.Fatalf("expected error for wrong digest")
	}
	if err := verifyDigest(filepath.Join(t.TempDir(), "missing"), "deadbeef"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadIDXDecompresses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.gz")
	payload := []byte{9, 8, 7, 6, 5}
	gzWrite(t, path, payload)

	got, err := readIDX(path)
	if err != nil {
		t.Fatalf("readIDX failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %v, got %v", payload, got)
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, payload, 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	if _, err := readIDX(plain); err == nil {
		t.Fatalf("expected error for non-gzip file")
	}
}

func TestLoadMNISTRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{trainImagesFile, trainLabelsFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("garbage"), 0o644); err != nil {
			t.Fatalf("write fixture failed: %v", err)
		}
	}
	if _, err := LoadMNIST(dir); err == nil {
		t.Fatalf("expected digest mismatch for corrupt files")
	}
}

func TestBatchGathersPermutedRows(t *testing.T) {
	px := ImgSize * ImgSize
	images := newTensor(5, 1, ImgSize, ImgSize)
	labels := make([]int, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < px; j++ {
			images.data[i*px+j] = float64(i) / 10
		}
		labels[i] = i
	}
	data := &Dataset{Images: images, Labels: labels}
	perm := []int{4, 2, 0, 3, 1}

	b := data.batch(perm, 0, 2)
	if b.Images.shape[0] != 2 {
		t.Fatalf("expected 2 rows, got %d", b.Images.shape[0])
	}
	if b.Images.data[0] != 0.4 || b.Images.data[px] != 0.2 {
		t.Fatalf("rows not gathered through the permutation")
	}
	if !reflect.DeepEqual(b.Labels, []int{4, 2}) {
		t.Fatalf("unexpected labels %v", b.Labels)
	}

	short := data.batch(perm, 4, 2)
	if short.Images.shape[0] != 1 {
		t.Fatalf("expected short final batch of 1 row, got %d", short.Images.shape[0])
	}
	if short.Images.data[0] != 0.1 || short.Labels[0] != 1 {
		t.Fatalf("short batch gathered wrong row")
	}
}

func TestBatchesPerEpoch(t *testing.T) {
	cases := []struct{ n, batch, want int }{
		{60000, 128, 469},
		{60000, 100, 600},
		{40, 16, 3},
		{5, 5, 1},
	}
	for _, c := range cases {
		if got := batchesPerEpoch(c.n, c.batch); got != c.want {
			t.Fatalf("batchesPerEpoch(%d, %d): expected %d, got %d", c.n, c.batch, c.want)
		}
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a := Synthetic(12, 5)
	b := Synthetic(12, 5)
	if !reflect.DeepEqual(a.Images.data, b.Images.data) || !reflect.DeepEqual(a.Labels, b.Labels) {
		t.Fatalf("same seed produced different datasets")
	}

	for i, v := range a.Images.data {
		if v < 0 || v >= 1 {
			t.Fatalf("pixel %d out of range: %v", i, v)
		}
	}
	for i, l := range a.Labels {
		if l < 0 || l > 9 {
			t.Fatalf("label %d out of range: %d", i, l)
		}
	}

	c := Synthetic(12, 6)
	if reflect.DeepEqual(a.Images.data, c.Images.data) {
		t.Fatalf("different seeds produced identical images")
	}
}
