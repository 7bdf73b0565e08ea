package gan

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// TensorInfo captures tensor state for error reporting
type TensorInfo struct {
	Shape      []int
	Size       int
	Address    string
	NaNCount   int
	InfCount   int
	MinValue   float64
	MaxValue   float64
	BadIndices []int // first 10 corrupted indices
}

// Format returns a compact string representation
func (t *TensorInfo) Format() string {
	s := fmt.Sprintf("%v size=%d addr=%s", t.Shape, t.Size, t.Address)
	if t.NaNCount > 0 || t.InfCount > 0 {
		s += fmt.Sprintf(" (corrupt: %d NaN, %d Inf)", t.NaNCount, t.InfCount)
	}
	return s
}

// FormatWithRange includes min/max range
func (t *TensorInfo) FormatWithRange() string {
	s := t.Format()
	if t.NaNCount == 0 && t.InfCount == 0 {
		s += fmt.Sprintf(" range=[%.4f, %.4f]", t.MinValue, t.MaxValue)
	}
	return s
}

// ScanTensor checks for NaN/Inf and collects stats
func ScanTensor(t *tensor) *TensorInfo {
	if t == nil {
		return nil
	}

	info := &TensorInfo{
		Shape:      t.shape,
		Size:       len(t.data),
		Address:    fmt.Sprintf("%p", t),
		MinValue:   math.Inf(1),
		MaxValue:   math.Inf(-1),
		BadIndices: make([]int, 0, 10),
	}

	for i, v := range t.data {
		if math.IsNaN(v) {
			info.NaNCount++
			if len(info.BadIndices) < 10 {
				info.BadIndices = append(info.BadIndices, i)
			}
		} else if math.IsInf(v, 0) {
			info.InfCount++
			if len(info.BadIndices) < 10 {
				info.BadIndices = append(info.BadIndices, i)
			}
		} else {
			if v < info.MinValue {
				info.MinValue = v
			}
			if v > info.MaxValue {
				info.MaxValue = v
			}
		}
	}

	// Empty or all-corrupt tensors have no finite range
	if math.IsInf(info.MinValue, 1) {
		info.MinValue = 0
	}
	if math.IsInf(info.MaxValue, -1) {
		info.MaxValue = 0
	}

	return info
}

// checkFinite returns a diagnostic error when t contains NaN or Inf. what
// names the tensor in the message, e.g. "generator output". Training aborts
// on the first corrupt tensor; there is no retry path.
func checkFinite(t *tensor, what string) error {
	info := ScanTensor(t)
	if info == nil {
		return errors.Errorf("gan: %s is nil", what)
	}
	if info.NaNCount == 0 && info.InfCount == 0 {
		return nil
	}
	return errors.Errorf("gan: %s corrupt: %s indices=%v", what, info.Format(), info.BadIndices)
}
