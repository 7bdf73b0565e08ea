package gan

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tensor is the core data structure - internal only, not exposed to users.
// Row-major, dense, owns its backing slice. Parameter gradients live in
// separate tensors owned by each layer, never inside the value tensor.
type tensor struct {
	data   []float64
	shape  []int
	stride []int
}

func newTensor(shape ...int) *tensor {
	size := 1
	for _, s := range shape {
		if s <= 0 {
			s = 1
		}
		size *= s
	}
	stride := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		if i == len(shape)-1 {
			stride[i] = 1
		} else {
			stride[i] = stride[i+1] * shape[i+1]
		}
	}
	return &tensor{
		data:   make([]float64, size),
		shape:  shape,
		stride: stride,
	}
}

func (t *tensor) size() int {
	return len(t.data)
}

func (t *tensor) at(indices ...int) float64 {
	idx := 0
	for i, v := range indices {
		idx += v * t.stride[i]
	}
	return t.data[idx]
}

func (t *tensor) set(value float64, indices ...int) {
	idx := 0
	for i, v := range indices {
		idx += v * t.stride[i]
	}
	t.data[idx] = value
}

func (t *tensor) fill(value float64) {
	for i := range t.data {
		t.data[i] = value
	}
}

func (t *tensor) fillRandNorm(mean, std float64, rng *rand.Rand) {
	for i := range t.data {
		t.data[i] = rng.NormFloat64()*std + mean
	}
}

func (t *tensor) fillRandUniform(low, high float64, rng *rand.Rand) {
	for i := range t.data {
		t.data[i] = rng.Float64()*(high-low) + low
	}
}

func (t *tensor) zero() {
	for i := range t.data {
		t.data[i] = 0
	}
}

func (t *tensor) clone() *tensor {
	nt := newTensor(t.shape...)
	copy(nt.data, t.data)
	return nt
}

// detach returns a copy that shares nothing with t. Feeding the detached
// copy to a network severs every path by which a later backward pass could
// reach the caches of whatever produced t: the stop-gradient operation at
// the generator/discriminator boundary.
func (t *tensor) detach() *tensor {
	return t.clone()
}

// view reinterprets t under a new shape sharing the same backing slice.
func (t *tensor) view(shape ...int) (*tensor, error) {
	size := 1
	for _, s := range shape {
		size *= s
	}
	if size != len(t.data) {
		return nil, errors.Errorf("gan: cannot view %v as %v", t.shape, shape)
	}
	stride := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		if i == len(shape)-1 {
			stride[i] = 1
		} else {
			stride[i] = stride[i+1] * shape[i+1]
		}
	}
	return &tensor{data: t.data, shape: shape, stride: stride}, nil
}

// Matrix kernels delegate to gonum. The mat.Dense headers wrap the existing
// backing slices, so results land in out with no intermediate copies. out
// must not alias a or b.
func matmul(a, b, out *tensor) {
	am := mat.NewDense(a.shape[0], a.shape[1], a.data)
	bm := mat.NewDense(b.shape[0], b.shape[1], b.data)
	om := mat.NewDense(out.shape[0], out.shape[1], out.data)
	om.Mul(am, bm)
}

// matmulTransA computes out = a^T @ b.
func matmulTransA(a, b, out *tensor) {
	am := mat.NewDense(a.shape[0], a.shape[1], a.data)
	bm := mat.NewDense(b.shape[0], b.shape[1], b.data)
	om := mat.NewDense(out.shape[0], out.shape[1], out.data)
	om.Mul(am.T(), bm)
}

// matmulTransB computes out = a @ b^T.
func matmulTransB(a, b, out *tensor) {
	am := mat.NewDense(a.shape[0], a.shape[1], a.data)
	bm := mat.NewDense(b.shape[0], b.shape[1], b.data)
	om := mat.NewDense(out.shape[0], out.shape[1], out.data)
	om.Mul(am, bm.T())
}

// addVec broadcasts a row vector b over every row of a.
func addVec(a *tensor, b *tensor) {
	for i := range a.data {
		a.data[i] += b.data[i%len(b.data)]
	}
}

func mulScalar(a *tensor, s float64) {
	floats.Scale(s, a.data)
}

func elemMul(a, b, out *tensor) {
	copy(out.data, a.data)
	floats.Mul(out.data, b.data)
}

// accumulate adds src into dst elementwise. Gradient buffers grow through
// this and shrink only through an explicit zero.
func accumulate(dst, src *tensor) {
	floats.Add(dst.data, src.data)
}

func sumAxis0(a *tensor, out *tensor) {
	rows := a.shape[0]
	cols := a.shape[1]
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += a.data[i*cols+j]
		}
		out.data[j] = sum
	}
}

func meanVal(a *tensor) float64 {
	if len(a.data) == 0 {
		return 0
	}
	return floats.Sum(a.data) / float64(len(a.data))
}
